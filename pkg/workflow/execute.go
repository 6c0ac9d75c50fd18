package workflow

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
	"github.com/nutrient-dws/client-go/pkg/transport"
)

// totalSteps is the number of phases in a full execution: validate,
// prepare and transmit, decode.
const totalSteps = 3

// Execute runs the workflow pipeline once. The first failure in any
// phase is captured as a single step-tagged error and the pipeline
// stops; there is no retry and no partial success. Regardless of
// outcome the asset registry is cleared and the builder becomes
// executed.
func (b *StagedWorkflowBuilder) Execute(ctx context.Context, opts ...ExecuteOption) *Result {
	var options executeOptions
	for _, opt := range opts {
		opt(&options)
	}

	result := &Result{}
	if b.executed {
		result.Errors = []StepError{{Step: 1, Err: errAlreadyExecuted()}}
		return result
	}

	defer func() {
		b.clearAssets()
		b.executed = true
	}()

	step := 1
	options.notify(step, totalSteps)
	if err := b.validate(); err != nil {
		b.logger.Error("workflow validation failed", "error", err)
		result.Errors = append(result.Errors, StepError{Step: step, Err: err})
		return result
	}

	step = 2
	options.notify(step, totalSteps)
	files, err := b.prepareFiles(ctx)
	if err != nil {
		b.logger.Error("asset materialization failed", "error", err)
		result.Errors = append(result.Errors, StepError{Step: step, Err: err})
		return result
	}

	kind := kindForOutput(b.instructions.Output)
	b.logger.Debug("submitting build request",
		"parts", len(b.instructions.Parts),
		"actions", len(b.instructions.Actions),
		"files", len(files),
		"kind", kind.String(),
	)
	resp, err := b.transport.Build(ctx, &transport.BuildRequest{
		Instructions: &b.instructions,
		Files:        files,
		Kind:         kind,
	})
	if err != nil {
		b.logger.Error("build request failed", "error", err)
		result.Errors = append(result.Errors, StepError{Step: step, Err: err})
		return result
	}

	step = 3
	options.notify(step, totalSteps)
	b.decodeResponse(resp, result)
	result.Success = true
	return result
}

// DryRun validates the workflow and submits the instruction document to
// the analyze endpoint, without uploading file bytes. Failures are
// always tagged step 0. Like Execute, it is a terminal call.
func (b *StagedWorkflowBuilder) DryRun(ctx context.Context) *DryRunResult {
	result := &DryRunResult{}
	if b.executed {
		result.Errors = []StepError{{Step: 0, Err: errAlreadyExecuted()}}
		return result
	}

	defer func() {
		b.clearAssets()
		b.executed = true
	}()

	if err := b.validate(); err != nil {
		result.Errors = append(result.Errors, StepError{Step: 0, Err: err})
		return result
	}

	resp, err := b.transport.Analyze(ctx, &b.instructions)
	if err != nil {
		b.logger.Error("analyze request failed", "error", err)
		result.Errors = append(result.Errors, StepError{Step: 0, Err: err})
		return result
	}

	analysis, err := decodeAnalysis(resp.JSON)
	if err != nil {
		result.Errors = append(result.Errors, StepError{Step: 0, Err: err})
		return result
	}

	result.Success = true
	result.Analysis = analysis
	return result
}

// prepareFiles materializes every registered asset concurrently. The
// batch is all-or-nothing: if any asset fails to resolve, the whole
// materialization fails and nothing is transmitted.
func (b *StagedWorkflowBuilder) prepareFiles(ctx context.Context) (map[string]inputs.NormalizedFile, error) {
	snapshot := b.assetSnapshot()
	files := make(map[string]inputs.NormalizedFile, len(snapshot))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for key, in := range snapshot {
		key, in := key, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			normalized, err := inputs.Resolve(b.fsys, in)
			if err != nil {
				return fmt.Errorf("materialize %s: %w", key, err)
			}
			mu.Lock()
			files[key] = normalized
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// kindForOutput selects the response decoding mode from the declared
// output type: structured JSON for content extraction, text for
// HTML/Markdown, raw bytes for everything else.
func kindForOutput(out build.Output) transport.ResponseKind {
	switch out.(type) {
	case *build.JSONContentOutput:
		return transport.KindJSON
	case *build.HTMLOutput, *build.MarkdownOutput:
		return transport.KindText
	default:
		return transport.KindBinary
	}
}

// decodeResponse maps a successful transport response onto the result
// variant matching the output type, with MIME type and filename from
// the static output table.
func (b *StagedWorkflowBuilder) decodeResponse(resp *transport.Response, result *Result) {
	switch b.instructions.Output.(type) {
	case *build.JSONContentOutput:
		result.JSONContent = &JSONContentOutput{Data: resp.JSON}
	case *build.HTMLOutput, *build.MarkdownOutput:
		mimeType, filename := build.OutputInfo(b.instructions.Output)
		result.Content = &ContentOutput{
			Content:  resp.Text,
			MimeType: mimeType,
			Filename: filename,
		}
	default:
		mimeType, filename := build.OutputInfo(b.instructions.Output)
		result.Output = &BufferOutput{
			Buffer:   resp.Body,
			MimeType: mimeType,
			Filename: filename,
		}
	}
}
