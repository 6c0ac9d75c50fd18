package workflow

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"

	"github.com/nutrient-dws/client-go/pkg/apierror"
)

// StepError tags a failure with the execution phase that raised it:
// validate=1, prepare/transmit=2, decode=3, dry run=0. Err is the
// original error, preserved unmodified.
type StepError struct {
	Step int
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e StepError) Unwrap() error {
	return e.Err
}

// BufferOutput is a binary result: the finished document bytes plus
// their MIME type and suggested filename.
type BufferOutput struct {
	Buffer   []byte
	MimeType string
	Filename string
}

// ContentOutput is a textual result (HTML or Markdown).
type ContentOutput struct {
	Content  string
	MimeType string
	Filename string
}

// JSONContentOutput is a structured extraction result, returned
// verbatim as decoded by the transport.
type JSONContentOutput struct {
	Data any
}

// Result is the discriminated outcome of Execute. On success exactly
// one output variant is set, selected by the workflow's output type; on
// failure Errors is non-empty and no output is set.
type Result struct {
	Success     bool
	Output      *BufferOutput
	Content     *ContentOutput
	JSONContent *JSONContentOutput
	Errors      []StepError
}

// Err folds the step errors into one error, or nil on success.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	var merr *multierror.Error
	for _, stepErr := range r.Errors {
		merr = multierror.Append(merr, stepErr)
	}
	if merr.ErrorOrNil() == nil {
		merr = multierror.Append(merr, fmt.Errorf("workflow failed without a recorded error"))
	}
	return merr.ErrorOrNil()
}

// Buffer unwraps the binary output, failing loudly when the result is
// not a successful buffer result.
func (r *Result) Buffer() (*BufferOutput, error) {
	if !r.Success {
		return nil, apierror.NewValidationError(
			"cannot read the output of a failed workflow; check Result.Errors", nil)
	}
	if r.Output == nil {
		return nil, apierror.NewValidationError(
			"workflow did not produce a buffer output", nil)
	}
	return r.Output, nil
}

// Text unwraps the textual output, failing loudly when the result is
// not a successful text result.
func (r *Result) Text() (*ContentOutput, error) {
	if !r.Success {
		return nil, apierror.NewValidationError(
			"cannot read the output of a failed workflow; check Result.Errors", nil)
	}
	if r.Content == nil {
		return nil, apierror.NewValidationError(
			"workflow did not produce a text output", nil)
	}
	return r.Content, nil
}

// Data unwraps the structured extraction output, failing loudly when
// the result is not a successful JSON-content result.
func (r *Result) Data() (any, error) {
	if !r.Success {
		return nil, apierror.NewValidationError(
			"cannot read the output of a failed workflow; check Result.Errors", nil)
	}
	if r.JSONContent == nil {
		return nil, apierror.NewValidationError(
			"workflow did not produce a JSON content output", nil)
	}
	return r.JSONContent.Data, nil
}

// Analysis is the analyze endpoint's estimate for a workflow.
type Analysis struct {
	Cost             float64        `mapstructure:"cost"`
	RequiredFeatures map[string]any `mapstructure:"required_features"`

	// Raw is the full decoded response for fields not modeled above.
	Raw map[string]any `mapstructure:"-"`
}

// DryRunResult is the discriminated outcome of DryRun.
type DryRunResult struct {
	Success  bool
	Analysis *Analysis
	Errors   []StepError
}

// Err folds the step errors into one error, or nil on success.
func (r *DryRunResult) Err() error {
	if r.Success {
		return nil
	}
	var merr *multierror.Error
	for _, stepErr := range r.Errors {
		merr = multierror.Append(merr, stepErr)
	}
	if merr.ErrorOrNil() == nil {
		merr = multierror.Append(merr, fmt.Errorf("dry run failed without a recorded error"))
	}
	return merr.ErrorOrNil()
}

// decodeAnalysis maps the loosely-typed analyze response into the
// Analysis struct, keeping the raw map alongside.
func decodeAnalysis(payload any) (*Analysis, error) {
	raw, _ := payload.(map[string]any)
	analysis := &Analysis{Raw: raw}
	if raw == nil {
		return analysis, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           analysis,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare analysis decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	return analysis, nil
}
