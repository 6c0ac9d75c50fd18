package workflow

import (
	"context"

	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
)

// The stage interfaces narrow the builder surface so a caller that
// follows the returned types cannot compose steps out of order: parts
// first, then actions, then exactly one output, then a terminal call.
// All stages are implemented by the same builder; ordering is also
// enforced at runtime for callers that retain the concrete type.

// InitialStage is a workflow with no parts yet. Only part-adding
// operations are available.
type InitialStage interface {
	// AddFilePart appends a file part. Local inputs are registered
	// as assets; remote URLs are referenced directly.
	AddFilePart(file inputs.FileInput, opts *build.FilePartOptions, actions ...build.Action) PartsStage

	// AddHTMLPart appends an HTML part with optional auxiliary
	// assets (CSS, images). Auxiliary assets must be local files.
	AddHTMLPart(html inputs.FileInput, assets []inputs.FileInput, opts *build.HTMLPartOptions, actions ...build.Action) PartsStage

	// AddNewPage appends one or more blank pages.
	AddNewPage(opts *build.NewPagePartOptions, actions ...build.Action) PartsStage

	// AddDocumentPart appends a reference to a document already
	// stored server-side.
	AddDocumentPart(documentID string, opts *build.DocumentPartOptions, actions ...build.Action) PartsStage

	// Err reports the first contract violation or invalid input
	// recorded so far. Terminal calls report the same error in
	// their result.
	Err() error
}

// PartsStage is a workflow with at least one part. Parts may still be
// added; actions and the output become available.
type PartsStage interface {
	InitialStage

	// ApplyAction appends one action to the global action list.
	ApplyAction(action build.Action) ActionsStage

	// ApplyActions appends actions to the global action list in order.
	ApplyActions(actions ...build.Action) ActionsStage

	OutputPDF(opts *build.PDFOptions) OutputStage
	OutputPDFA(opts *build.PDFAOptions) OutputStage
	OutputPDFUA(opts *build.PDFOptions) OutputStage
	OutputImage(format string, opts *build.ImageOptions) OutputStage
	OutputOffice(format string) OutputStage
	OutputHTML(layout string) OutputStage
	OutputMarkdown() OutputStage
	OutputJSON(opts *build.JSONContentOptions) OutputStage
}

// ActionsStage is a workflow with global actions applied. It is
// identical to PartsStage: more parts and actions may follow until the
// output is selected.
type ActionsStage = PartsStage

// OutputStage is a workflow with its output selected. Only the
// terminal calls remain.
type OutputStage interface {
	// Execute runs the three-phase pipeline (validate, transmit,
	// decode) and reports the outcome. It never panics on remote
	// failure; inspect Result.Success.
	Execute(ctx context.Context, opts ...ExecuteOption) *Result

	// DryRun validates the workflow and submits it for analysis
	// without uploading file bytes or producing a document.
	DryRun(ctx context.Context) *DryRunResult

	// Err reports the first contract violation or invalid input
	// recorded so far, before any terminal call is made.
	Err() error
}

var (
	_ PartsStage  = (*StagedWorkflowBuilder)(nil)
	_ OutputStage = (*StagedWorkflowBuilder)(nil)
)

// ProgressFunc observes phase transitions during Execute. It is called
// synchronously with (current, total) and must not block.
type ProgressFunc func(current, total int)

// ExecuteOption customizes one Execute call.
type ExecuteOption func(*executeOptions)

type executeOptions struct {
	onProgress ProgressFunc
}

// WithProgress registers a progress callback, invoked exactly once at
// the start of each execution phase.
func WithProgress(fn ProgressFunc) ExecuteOption {
	return func(o *executeOptions) {
		o.onProgress = fn
	}
}

func (o *executeOptions) notify(current, total int) {
	if o.onProgress != nil {
		o.onProgress(current, total)
	}
}
