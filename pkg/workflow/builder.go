package workflow

import (
	"github.com/nutrient-dws/client-go/pkg/apierror"
	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
)

// Err returns the first contract violation or invalid input recorded on
// the builder. A non-nil Err is sticky: later mutating calls no-op and
// the terminal call reports it as a validation failure.
func (b *StagedWorkflowBuilder) Err() error {
	return b.err
}

// fail records the first error; subsequent errors are dropped.
func (b *StagedWorkflowBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// mutable reports whether the builder may still be modified, recording
// the violation otherwise.
func (b *StagedWorkflowBuilder) mutable() bool {
	if b.err != nil {
		return false
	}
	if b.executed {
		b.fail(errAlreadyExecuted())
		return false
	}
	if b.outputSet {
		b.fail(apierror.NewValidationError(
			"workflow output has already been set; no further modifications are allowed", nil))
		return false
	}
	return true
}

func errAlreadyExecuted() error {
	return apierror.NewValidationError(
		"this workflow has already been executed; create a new workflow builder for additional operations", nil)
}

// fileHandle resolves an input to its document reference: remote inputs
// by URL, local inputs by freshly-registered asset key.
func (b *StagedWorkflowBuilder) fileHandle(in inputs.FileInput) (build.FileHandle, error) {
	if err := inputs.Validate(in); err != nil {
		return build.FileHandle{}, err
	}
	if inputs.IsRemote(in) {
		return build.FileHandle{URL: in.URL()}, nil
	}
	key, err := b.registerAsset(in)
	if err != nil {
		return build.FileHandle{}, err
	}
	return build.FileHandle{Key: key}, nil
}

// processAction normalizes one action at attach time. Concrete actions
// pass through; a pending file action is finalized against its resolved
// handle so the symbolic key exists before materialization.
func (b *StagedWorkflowBuilder) processAction(action build.Action) (build.Action, error) {
	pending, ok := action.(*build.PendingFileAction)
	if !ok {
		return action, nil
	}
	handle, err := b.fileHandle(pending.Input)
	if err != nil {
		return nil, err
	}
	return pending.Build(handle), nil
}

func (b *StagedWorkflowBuilder) processActions(actions []build.Action) ([]build.Action, error) {
	if len(actions) == 0 {
		return nil, nil
	}
	processed := make([]build.Action, 0, len(actions))
	for _, action := range actions {
		resolved, err := b.processAction(action)
		if err != nil {
			return nil, err
		}
		processed = append(processed, resolved)
	}
	return processed, nil
}

// AddFilePart appends a file part to the workflow.
func (b *StagedWorkflowBuilder) AddFilePart(file inputs.FileInput, opts *build.FilePartOptions, actions ...build.Action) PartsStage {
	if !b.mutable() {
		return b
	}
	handle, err := b.fileHandle(file)
	if err != nil {
		b.fail(err)
		return b
	}
	part := &build.FilePart{File: handle}
	if opts != nil {
		part.Password = opts.Password
		part.Pages = opts.Pages
		part.ContentType = opts.ContentType
	}
	if part.Actions, err = b.processActions(actions); err != nil {
		b.fail(err)
		return b
	}
	b.instructions.Parts = append(b.instructions.Parts, part)
	return b
}

// AddHTMLPart appends an HTML part. Auxiliary assets must be local
// files; they are registered and referenced by key.
func (b *StagedWorkflowBuilder) AddHTMLPart(html inputs.FileInput, assets []inputs.FileInput, opts *build.HTMLPartOptions, actions ...build.Action) PartsStage {
	if !b.mutable() {
		return b
	}
	handle, err := b.fileHandle(html)
	if err != nil {
		b.fail(err)
		return b
	}
	part := &build.HTMLPart{HTML: handle}
	for _, asset := range assets {
		if inputs.IsRemote(asset) {
			b.fail(apierror.NewValidationError(
				"assets file input cannot be a URL",
				map[string]any{"url": asset.URL()},
			))
			return b
		}
		key, err := b.registerAsset(asset)
		if err != nil {
			b.fail(err)
			return b
		}
		part.Assets = append(part.Assets, key)
	}
	if opts != nil {
		part.Layout = opts.Layout
	}
	if part.Actions, err = b.processActions(actions); err != nil {
		b.fail(err)
		return b
	}
	b.instructions.Parts = append(b.instructions.Parts, part)
	return b
}

// AddNewPage appends blank pages to the workflow.
func (b *StagedWorkflowBuilder) AddNewPage(opts *build.NewPagePartOptions, actions ...build.Action) PartsStage {
	if !b.mutable() {
		return b
	}
	part := &build.NewPagePart{}
	if opts != nil {
		part.PageCount = opts.PageCount
		part.Layout = opts.Layout
	}
	processed, err := b.processActions(actions)
	if err != nil {
		b.fail(err)
		return b
	}
	part.Actions = processed
	b.instructions.Parts = append(b.instructions.Parts, part)
	return b
}

// AddDocumentPart appends a reference to an existing server-side
// document.
func (b *StagedWorkflowBuilder) AddDocumentPart(documentID string, opts *build.DocumentPartOptions, actions ...build.Action) PartsStage {
	if !b.mutable() {
		return b
	}
	if documentID == "" {
		b.fail(apierror.NewValidationError("document ID must not be empty", nil))
		return b
	}
	part := &build.DocumentPart{Document: build.DocumentRef{ID: documentID}}
	if opts != nil {
		part.Document.Layer = opts.Layer
		part.Password = opts.Password
		part.Pages = opts.Pages
	}
	processed, err := b.processActions(actions)
	if err != nil {
		b.fail(err)
		return b
	}
	part.Actions = processed
	b.instructions.Parts = append(b.instructions.Parts, part)
	return b
}

// ApplyAction appends one action to the global action list.
func (b *StagedWorkflowBuilder) ApplyAction(action build.Action) ActionsStage {
	return b.ApplyActions(action)
}

// ApplyActions appends actions to the global action list in order,
// normalizing each at attach time.
func (b *StagedWorkflowBuilder) ApplyActions(actions ...build.Action) ActionsStage {
	if !b.mutable() {
		return b
	}
	processed, err := b.processActions(actions)
	if err != nil {
		b.fail(err)
		return b
	}
	b.instructions.Actions = append(b.instructions.Actions, processed...)
	return b
}

// setOutput records the single output descriptor; selecting an output
// is a one-time transition.
func (b *StagedWorkflowBuilder) setOutput(out build.Output) OutputStage {
	if !b.mutable() {
		return b
	}
	b.instructions.Output = out
	b.outputSet = true
	return b
}

// OutputPDF selects plain PDF output.
func (b *StagedWorkflowBuilder) OutputPDF(opts *build.PDFOptions) OutputStage {
	out := &build.PDFOutput{}
	if opts != nil {
		out.PDFOptions = *opts
	}
	return b.setOutput(out)
}

// OutputPDFA selects archival PDF/A output.
func (b *StagedWorkflowBuilder) OutputPDFA(opts *build.PDFAOptions) OutputStage {
	out := &build.PDFAOutput{}
	if opts != nil {
		out.PDFAOptions = *opts
	}
	return b.setOutput(out)
}

// OutputPDFUA selects accessible PDF/UA output.
func (b *StagedWorkflowBuilder) OutputPDFUA(opts *build.PDFOptions) OutputStage {
	out := &build.PDFUAOutput{}
	if opts != nil {
		out.PDFOptions = *opts
	}
	return b.setOutput(out)
}

// OutputImage selects image output. At least one of dpi, width, or
// height must be supplied; the violation is recorded immediately and
// reported by Err and by the terminal call.
func (b *StagedWorkflowBuilder) OutputImage(format string, opts *build.ImageOptions) OutputStage {
	if !b.mutable() {
		return b
	}
	out := &build.ImageOutput{Format: format}
	if opts != nil {
		out.ImageOptions = *opts
	}
	if err := out.Validate(); err != nil {
		b.fail(err)
		return b
	}
	return b.setOutput(out)
}

// OutputOffice selects docx, xlsx, or pptx output.
func (b *StagedWorkflowBuilder) OutputOffice(format string) OutputStage {
	if !b.mutable() {
		return b
	}
	out := &build.OfficeOutput{Format: format}
	if err := out.Validate(); err != nil {
		b.fail(err)
		return b
	}
	return b.setOutput(out)
}

// OutputHTML selects HTML output; layout defaults to "page".
func (b *StagedWorkflowBuilder) OutputHTML(layout string) OutputStage {
	if layout == "" {
		layout = "page"
	}
	return b.setOutput(&build.HTMLOutput{Layout: layout})
}

// OutputMarkdown selects Markdown output.
func (b *StagedWorkflowBuilder) OutputMarkdown() OutputStage {
	return b.setOutput(&build.MarkdownOutput{})
}

// OutputJSON selects structured content extraction.
func (b *StagedWorkflowBuilder) OutputJSON(opts *build.JSONContentOptions) OutputStage {
	out := &build.JSONContentOutput{}
	if opts != nil {
		out.JSONContentOptions = *opts
	}
	return b.setOutput(out)
}

// validate runs the pre-execution checks and defaults the output.
func (b *StagedWorkflowBuilder) validate() error {
	if b.err != nil {
		return b.err
	}
	if len(b.instructions.Parts) == 0 {
		return apierror.NewValidationError("workflow has no parts to execute", nil)
	}
	if b.instructions.Output == nil {
		b.instructions.Output = &build.PDFOutput{}
	}
	return nil
}
