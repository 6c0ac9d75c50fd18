package workflow

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrient-dws/client-go/pkg/apierror"
	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
	"github.com/nutrient-dws/client-go/pkg/transport"
)

// stubTransport is a test implementation of the Transport interface.
type stubTransport struct {
	buildResp   *transport.Response
	buildErr    error
	analyzeResp *transport.Response
	analyzeErr  error

	buildRequests   []*transport.BuildRequest
	analyzeRequests []*build.Instructions
}

func (s *stubTransport) Build(ctx context.Context, req *transport.BuildRequest) (*transport.Response, error) {
	s.buildRequests = append(s.buildRequests, req)
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	if s.buildResp != nil {
		return s.buildResp, nil
	}
	return &transport.Response{StatusCode: 200, Body: []byte("ok")}, nil
}

func (s *stubTransport) Analyze(ctx context.Context, instructions *build.Instructions) (*transport.Response, error) {
	s.analyzeRequests = append(s.analyzeRequests, instructions)
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	if s.analyzeResp != nil {
		return s.analyzeResp, nil
	}
	return &transport.Response{StatusCode: 200, JSON: map[string]any{}}, nil
}

func newBuilder(t *testing.T, stub *stubTransport, opts ...Option) *StagedWorkflowBuilder {
	t.Helper()
	b, ok := New(stub, opts...).(*StagedWorkflowBuilder)
	require.True(t, ok)
	return b
}

func TestExecute_BufferOutput(t *testing.T) {
	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, Body: []byte("pdf-bytes")},
	}
	b := newBuilder(t, stub)

	stage := b.
		AddFilePart(inputs.FromBytes([]byte("%PDF-1.7"), "doc.pdf"), nil).
		ApplyAction(build.OCR("english")).
		OutputPDF(nil)

	result := stage.Execute(context.Background())
	require.True(t, result.Success)
	require.Empty(t, result.Errors)

	out, err := result.Buffer()
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), out.Buffer)
	assert.Equal(t, "application/pdf", out.MimeType)
	assert.Equal(t, "output.pdf", out.Filename)

	// The single build request carried the materialized asset.
	require.Len(t, stub.buildRequests, 1)
	req := stub.buildRequests[0]
	require.Contains(t, req.Files, "asset_0")
	assert.Equal(t, []byte("%PDF-1.7"), req.Files["asset_0"].Data)
	assert.Equal(t, "doc.pdf", req.Files["asset_0"].Filename)
	assert.Equal(t, transport.KindBinary, req.Kind)

	// Single use: a second terminal call fails without reaching the
	// transport.
	second := stage.Execute(context.Background())
	assert.False(t, second.Success)
	require.Len(t, second.Errors, 1)
	assert.Equal(t, 1, second.Errors[0].Step)
	assert.True(t, apierror.IsValidation(second.Errors[0].Err))
	assert.Len(t, stub.buildRequests, 1)
}

func TestExecute_JSONContentOutput(t *testing.T) {
	payload := map[string]any{
		"pages": []any{
			map[string]any{"plainText": "hello"},
		},
	}
	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, JSON: payload},
	}
	b := newBuilder(t, stub)

	result := b.
		AddFilePart(inputs.FromBytes([]byte("bytes"), ""), nil).
		OutputJSON(&build.JSONContentOptions{PlainText: true}).
		Execute(context.Background())

	require.True(t, result.Success)
	data, err := result.Data()
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Nil(t, result.Output)
	assert.Nil(t, result.Content)

	require.Len(t, stub.buildRequests, 1)
	assert.Equal(t, transport.KindJSON, stub.buildRequests[0].Kind)
}

func TestExecute_TextOutput(t *testing.T) {
	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, Text: "# Title"},
	}
	b := newBuilder(t, stub)

	result := b.
		AddFilePart(inputs.FromBytes([]byte("bytes"), ""), nil).
		OutputMarkdown().
		Execute(context.Background())

	require.True(t, result.Success)
	content, err := result.Text()
	require.NoError(t, err)
	assert.Equal(t, "# Title", content.Content)
	assert.Equal(t, "text/markdown", content.MimeType)
	assert.Equal(t, "output.md", content.Filename)
	assert.Equal(t, transport.KindText, stub.buildRequests[0].Kind)
}

func TestExecute_TransportErrorPreserved(t *testing.T) {
	netErr := &apierror.NetworkError{Message: "request failed", Err: errors.New("connection reset")}
	stub := &stubTransport{buildErr: netErr}
	b := newBuilder(t, stub)

	result := b.
		AddFilePart(inputs.FromBytes([]byte("bytes"), ""), nil).
		OutputPDF(nil).
		Execute(context.Background())

	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Step)
	// The error is the exact transport error, not wrapped or altered.
	assert.Same(t, netErr, result.Errors[0].Err.(*apierror.NetworkError))

	// Cleanup ran despite the failure.
	assert.Empty(t, b.assets)
	assert.True(t, b.executed)
}

func TestExecute_EmptyPartsRejected(t *testing.T) {
	stub := &stubTransport{}
	b := newBuilder(t, stub)

	result := b.Execute(context.Background())
	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Step)
	assert.True(t, apierror.IsValidation(result.Errors[0].Err))
	assert.EqualError(t, result.Errors[0].Err, "workflow has no parts to execute")
	assert.Empty(t, stub.buildRequests)

	// The single-use guarantee holds even on validation failure.
	assert.True(t, b.executed)
	b.AddFilePart(inputs.FromBytes([]byte("late"), ""), nil)
	assert.True(t, apierror.IsValidation(b.Err()))
}

func TestExecute_DefaultsToPDFOutput(t *testing.T) {
	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, Body: []byte("doc")},
	}
	b := newBuilder(t, stub)
	b.AddFilePart(inputs.FromBytes([]byte("bytes"), ""), nil)

	result := b.Execute(context.Background())
	require.True(t, result.Success)

	out, err := result.Buffer()
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.MimeType)

	require.Len(t, stub.buildRequests, 1)
	assert.IsType(t, &build.PDFOutput{}, stub.buildRequests[0].Instructions.Output)
}

func TestExecute_MaterializationFailureIsStepTwo(t *testing.T) {
	fsys := afero.NewMemMapFs()
	stub := &stubTransport{}
	b := newBuilder(t, stub, WithFS(fsys))

	result := b.
		AddFilePart(inputs.FromPath("missing.pdf"), nil).
		OutputPDF(nil).
		Execute(context.Background())

	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Step)
	assert.True(t, errors.Is(result.Errors[0].Err, fs.ErrNotExist))
	assert.Empty(t, stub.buildRequests)
}

func TestExecute_MaterializesConcurrently(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "a.pdf", []byte("aaa"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "b.pdf", []byte("bbb"), 0o644))

	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, Body: []byte("merged")},
	}
	b := newBuilder(t, stub, WithFS(fsys))

	result := b.
		AddFilePart(inputs.FromPath("a.pdf"), nil).
		AddFilePart(inputs.FromPath("b.pdf"), nil).
		OutputPDF(nil).
		Execute(context.Background())

	require.True(t, result.Success)
	req := stub.buildRequests[0]
	require.Len(t, req.Files, 2)
	assert.Equal(t, []byte("aaa"), req.Files["asset_0"].Data)
	assert.Equal(t, []byte("bbb"), req.Files["asset_1"].Data)
	assert.Equal(t, "a.pdf", req.Files["asset_0"].Filename)
}

func TestAssetKeys_SequentialAndRemoteConsumesNone(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddFilePart(inputs.FromBytes([]byte("one"), "one.pdf"), nil).
		AddFilePart(inputs.FromURL("https://example.com/two.pdf"), nil).
		AddFilePart(inputs.FromBytes([]byte("three"), "three.pdf"), nil)

	require.Len(t, b.instructions.Parts, 3)

	first := b.instructions.Parts[0].(*build.FilePart)
	assert.Equal(t, "asset_0", first.File.Key)

	remote := b.instructions.Parts[1].(*build.FilePart)
	assert.Empty(t, remote.File.Key)
	assert.Equal(t, "https://example.com/two.pdf", remote.File.URL)

	third := b.instructions.Parts[2].(*build.FilePart)
	assert.Equal(t, "asset_1", third.File.Key)

	assert.Len(t, b.assets, 2)
}

func TestDeferredAction_ResolvesToRegisteredKey(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddFilePart(inputs.FromBytes([]byte("doc"), "doc.pdf"), nil).
		ApplyAction(build.WatermarkImage(inputs.FromBytes([]byte("png"), "logo.png"), nil))

	require.Len(t, b.instructions.Actions, 1)
	watermark, ok := b.instructions.Actions[0].(*build.ImageWatermarkAction)
	require.True(t, ok, "pending action must be resolved at attach time")
	assert.Equal(t, "asset_1", watermark.Image.Key)
	assert.Contains(t, b.assets, "asset_1")
}

func TestDeferredAction_RemoteInputSkipsRegistry(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddFilePart(inputs.FromBytes([]byte("doc"), "doc.pdf"), nil).
		ApplyAction(build.WatermarkImage(inputs.FromURL("https://example.com/logo.png"), nil))

	watermark := b.instructions.Actions[0].(*build.ImageWatermarkAction)
	assert.Empty(t, watermark.Image.Key)
	assert.Equal(t, "https://example.com/logo.png", watermark.Image.URL)
	assert.Len(t, b.assets, 1)
}

func TestOutputImage_RequiresDimension(t *testing.T) {
	b := newBuilder(t, &stubTransport{})
	stage := b.AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil)

	stage.OutputImage("png", nil)
	require.Error(t, b.Err())
	assert.True(t, apierror.IsValidation(b.Err()))
}

func TestOutputImage_AnyDimensionSuffices(t *testing.T) {
	for name, opts := range map[string]*build.ImageOptions{
		"dpi":    {DPI: 300},
		"width":  {Width: 800},
		"height": {Height: 600},
	} {
		t.Run(name, func(t *testing.T) {
			b := newBuilder(t, &stubTransport{
				buildResp: &transport.Response{StatusCode: 200, Body: []byte("img")},
			})
			stage := b.
				AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).
				OutputImage("png", opts)
			require.NoError(t, b.Err())

			result := stage.Execute(context.Background())
			assert.True(t, result.Success)
		})
	}
}

func TestTypestate_MutationAfterOutputRejected(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).OutputPDF(nil)
	require.NoError(t, b.Err())

	b.AddFilePart(inputs.FromBytes([]byte("late"), ""), nil)
	require.Error(t, b.Err())
	assert.True(t, apierror.IsValidation(b.Err()))
	assert.Len(t, b.instructions.Parts, 1)
}

func TestTypestate_SecondOutputRejected(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).OutputPDF(nil)
	b.OutputMarkdown()

	require.Error(t, b.Err())
	assert.IsType(t, &build.PDFOutput{}, b.instructions.Output)
}

func TestTypestate_MutationAfterDryRunRejected(t *testing.T) {
	stub := &stubTransport{
		analyzeResp: &transport.Response{StatusCode: 200, JSON: map[string]any{"cost": 1.0}},
	}
	b := newBuilder(t, stub)

	b.AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).OutputPDF(nil)
	result := b.DryRun(context.Background())
	require.True(t, result.Success)

	b.ApplyAction(build.Rotate(90))
	assert.True(t, apierror.IsValidation(b.Err()))

	second := b.DryRun(context.Background())
	assert.False(t, second.Success)
	require.Len(t, second.Errors, 1)
	assert.Equal(t, 0, second.Errors[0].Step)
}

func TestHTMLPart_RemoteAssetRejected(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddHTMLPart(
		inputs.FromBytes([]byte("<html/>"), "index.html"),
		[]inputs.FileInput{inputs.FromURL("https://example.com/style.css")},
		nil,
	)

	require.Error(t, b.Err())
	assert.True(t, apierror.IsValidation(b.Err()))
}

func TestHTMLPart_RegistersAssets(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	b.AddHTMLPart(
		inputs.FromBytes([]byte("<html/>"), "index.html"),
		[]inputs.FileInput{
			inputs.FromBytes([]byte("body{}"), "style.css"),
			inputs.FromBytes([]byte{0x89}, "logo.png"),
		},
		nil,
	)

	require.NoError(t, b.Err())
	part := b.instructions.Parts[0].(*build.HTMLPart)
	assert.Equal(t, "asset_0", part.HTML.Key)
	assert.Equal(t, []string{"asset_1", "asset_2"}, part.Assets)
}

func TestProgressCallback_ThreeOrderedPhases(t *testing.T) {
	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, Body: []byte("doc")},
	}
	b := newBuilder(t, stub)

	var calls [][2]int
	result := b.
		AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).
		OutputPDF(nil).
		Execute(context.Background(), WithProgress(func(current, total int) {
			calls = append(calls, [2]int{current, total})
		}))

	require.True(t, result.Success)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestDryRun_DecodesAnalysis(t *testing.T) {
	stub := &stubTransport{
		analyzeResp: &transport.Response{StatusCode: 200, JSON: map[string]any{
			"cost": 0.5,
			"required_features": map[string]any{
				"ocr": map[string]any{"unit": "per_page", "units": 2.0},
			},
		}},
	}
	b := newBuilder(t, stub)

	result := b.
		AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).
		OutputPDF(nil).
		DryRun(context.Background())

	require.True(t, result.Success)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, 0.5, result.Analysis.Cost)
	assert.Contains(t, result.Analysis.RequiredFeatures, "ocr")
	assert.Contains(t, result.Analysis.Raw, "cost")

	// No file bytes travel with a dry run.
	require.Len(t, stub.analyzeRequests, 1)
	assert.Empty(t, stub.buildRequests)
}

func TestDryRun_FailureTaggedStepZero(t *testing.T) {
	apiErr := &apierror.APIError{Message: "quota exceeded", StatusCode: 402}
	stub := &stubTransport{analyzeErr: apiErr}
	b := newBuilder(t, stub)

	result := b.
		AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).
		OutputPDF(nil).
		DryRun(context.Background())

	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Errors[0].Step)
	assert.Same(t, apiErr, result.Errors[0].Err.(*apierror.APIError))
	assert.True(t, b.executed)
}

func TestResult_GuardsMismatchedAccess(t *testing.T) {
	stub := &stubTransport{
		buildResp: &transport.Response{StatusCode: 200, Body: []byte("doc")},
	}
	b := newBuilder(t, stub)

	result := b.
		AddFilePart(inputs.FromBytes([]byte("doc"), ""), nil).
		OutputPDF(nil).
		Execute(context.Background())

	require.True(t, result.Success)
	assert.NoError(t, result.Err())

	_, err := result.Text()
	assert.True(t, apierror.IsValidation(err))
	_, err = result.Data()
	assert.True(t, apierror.IsValidation(err))
}

func TestResult_ErrAggregatesStepErrors(t *testing.T) {
	b := newBuilder(t, &stubTransport{})

	result := b.Execute(context.Background())
	require.False(t, result.Success)

	err := result.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")

	_, accessErr := result.Buffer()
	assert.True(t, apierror.IsValidation(accessErr))
}
