package build

import (
	"encoding/json"
	"errors"

	"github.com/nutrient-dws/client-go/pkg/inputs"
)

// Action is one transformation step applied to a part or to the whole
// assembled document. Concrete actions marshal to their wire form; a
// PendingFileAction must be resolved to a concrete action before the
// instruction document is serialized.
type Action interface {
	isAction()
}

// PendingFileAction is an action that carries a local or remote file
// input and produces its final concrete form only once that input has
// been resolved to an asset key or URL handle. The workflow builder
// resolves pending actions at the moment they are attached.
type PendingFileAction struct {
	Input inputs.FileInput
	Build func(FileHandle) Action
}

func (*PendingFileAction) isAction() {}

func (*PendingFileAction) MarshalJSON() ([]byte, error) {
	return nil, errors.New("pending file action was not resolved before serialization")
}

// Languages is one or more OCR languages. A single language marshals as
// a bare string, matching the wire format.
type Languages []string

func (l Languages) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

// OCRAction runs optical character recognition.
type OCRAction struct {
	Language Languages `json:"language"`
}

func (*OCRAction) isAction() {}

func (a *OCRAction) MarshalJSON() ([]byte, error) {
	type alias OCRAction
	return marshalTyped("ocr", (*alias)(a))
}

// OCR creates an OCR action for the given language(s).
func OCR(languages ...string) Action {
	return &OCRAction{Language: Languages(languages)}
}

// RotateAction rotates pages by 90, 180, or 270 degrees.
type RotateAction struct {
	RotateBy int `json:"rotateBy"`
}

func (*RotateAction) isAction() {}

func (a *RotateAction) MarshalJSON() ([]byte, error) {
	type alias RotateAction
	return marshalTyped("rotate", (*alias)(a))
}

// Rotate creates a rotation action. Valid angles are 90, 180, and 270.
func Rotate(degrees int) Action {
	return &RotateAction{RotateBy: degrees}
}

// Dimension is a length with a unit ("pt" or "%").
type Dimension struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// DefaultDimension is the watermark width/height applied when no
// explicit dimension is given: 100% of the page.
var DefaultDimension = Dimension{Value: 100, Unit: "%"}

// WatermarkOptions positions and styles a watermark. Rotation is always
// serialized, defaulting to 0.
type WatermarkOptions struct {
	Width      *Dimension `json:"width,omitempty"`
	Height     *Dimension `json:"height,omitempty"`
	Top        *Dimension `json:"top,omitempty"`
	Right      *Dimension `json:"right,omitempty"`
	Bottom     *Dimension `json:"bottom,omitempty"`
	Left       *Dimension `json:"left,omitempty"`
	Rotation   int        `json:"rotation"`
	Opacity    *float64   `json:"opacity,omitempty"`
	FontFamily string     `json:"fontFamily,omitempty"`
	FontSize   int        `json:"fontSize,omitempty"`
	FontColor  string     `json:"fontColor,omitempty"`
	FontStyle  []string   `json:"fontStyle,omitempty"`
}

func (o *WatermarkOptions) withDefaults() WatermarkOptions {
	var out WatermarkOptions
	if o != nil {
		out = *o
	}
	if out.Width == nil {
		d := DefaultDimension
		out.Width = &d
	}
	if out.Height == nil {
		d := DefaultDimension
		out.Height = &d
	}
	return out
}

// TextWatermarkAction stamps text on every page.
type TextWatermarkAction struct {
	Text string `json:"text"`
	WatermarkOptions
}

func (*TextWatermarkAction) isAction() {}

func (a *TextWatermarkAction) MarshalJSON() ([]byte, error) {
	type alias TextWatermarkAction
	return marshalTyped("watermark", (*alias)(a))
}

// WatermarkText creates a text watermark action. Width and height
// default to 100% of the page.
func WatermarkText(text string, opts *WatermarkOptions) Action {
	return &TextWatermarkAction{Text: text, WatermarkOptions: opts.withDefaults()}
}

// ImageWatermarkAction stamps an image on every page. The image is a
// registered asset or remote URL.
type ImageWatermarkAction struct {
	Image FileHandle `json:"image"`
	WatermarkOptions
}

func (*ImageWatermarkAction) isAction() {}

func (a *ImageWatermarkAction) MarshalJSON() ([]byte, error) {
	type alias ImageWatermarkAction
	return marshalTyped("watermark", (*alias)(a))
}

// WatermarkImage creates an image watermark action. The image file is
// registered with the workflow when the action is attached, so the
// returned action is pending until then.
func WatermarkImage(image inputs.FileInput, opts *WatermarkOptions) Action {
	resolved := opts.withDefaults()
	return &PendingFileAction{
		Input: image,
		Build: func(h FileHandle) Action {
			return &ImageWatermarkAction{Image: h, WatermarkOptions: resolved}
		},
	}
}

// FlattenAction flattens annotations into page content. With no IDs,
// all annotations are flattened.
type FlattenAction struct {
	AnnotationIDs []string `json:"annotationIds,omitempty"`
}

func (*FlattenAction) isAction() {}

func (a *FlattenAction) MarshalJSON() ([]byte, error) {
	type alias FlattenAction
	return marshalTyped("flatten", (*alias)(a))
}

// Flatten creates a flatten action.
func Flatten(annotationIDs ...string) Action {
	return &FlattenAction{AnnotationIDs: annotationIDs}
}

// ApplyInstantJSONAction imports an Instant JSON annotation file.
type ApplyInstantJSONAction struct {
	File FileHandle `json:"file"`
}

func (*ApplyInstantJSONAction) isAction() {}

func (a *ApplyInstantJSONAction) MarshalJSON() ([]byte, error) {
	type alias ApplyInstantJSONAction
	return marshalTyped("applyInstantJson", (*alias)(a))
}

// ApplyInstantJSON creates a pending action that applies an Instant
// JSON file, local or remote.
func ApplyInstantJSON(file inputs.FileInput) Action {
	return &PendingFileAction{
		Input: file,
		Build: func(h FileHandle) Action {
			return &ApplyInstantJSONAction{File: h}
		},
	}
}

// XFDFOptions tunes XFDF import behavior.
type XFDFOptions struct {
	IgnorePageRotation *bool `json:"ignorePageRotation,omitempty"`
	RichTextEnabled    *bool `json:"richTextEnabled,omitempty"`
}

// ApplyXFDFAction imports annotations from an XFDF file.
type ApplyXFDFAction struct {
	File FileHandle `json:"file"`
	XFDFOptions
}

func (*ApplyXFDFAction) isAction() {}

func (a *ApplyXFDFAction) MarshalJSON() ([]byte, error) {
	type alias ApplyXFDFAction
	return marshalTyped("applyXfdf", (*alias)(a))
}

// ApplyXFDF creates a pending action that applies an XFDF file, local
// or remote.
func ApplyXFDF(file inputs.FileInput, opts *XFDFOptions) Action {
	var resolved XFDFOptions
	if opts != nil {
		resolved = *opts
	}
	return &PendingFileAction{
		Input: file,
		Build: func(h FileHandle) Action {
			return &ApplyXFDFAction{File: h, XFDFOptions: resolved}
		},
	}
}

// RedactionSearchOptions tunes how redaction candidates are located.
type RedactionSearchOptions struct {
	CaseSensitive      *bool `json:"caseSensitive,omitempty"`
	IncludeAnnotations *bool `json:"includeAnnotations,omitempty"`
	Start              *int  `json:"start,omitempty"`
	Limit              *int  `json:"limit,omitempty"`
}

// CreateRedactionsAction creates redaction annotations matching a text,
// regex, or preset search strategy. The annotations are applied by a
// subsequent ApplyRedactions action.
type CreateRedactionsAction struct {
	Strategy        string         `json:"strategy"`
	StrategyOptions map[string]any `json:"strategyOptions"`
	Content         map[string]any `json:"content,omitempty"`
}

func (*CreateRedactionsAction) isAction() {}

func (a *CreateRedactionsAction) MarshalJSON() ([]byte, error) {
	type alias CreateRedactionsAction
	return marshalTyped("createRedactions", (*alias)(a))
}

func redactionStrategyOptions(base map[string]any, opts *RedactionSearchOptions) map[string]any {
	if opts == nil {
		return base
	}
	if opts.CaseSensitive != nil {
		base["caseSensitive"] = *opts.CaseSensitive
	}
	if opts.IncludeAnnotations != nil {
		base["includeAnnotations"] = *opts.IncludeAnnotations
	}
	if opts.Start != nil {
		base["start"] = *opts.Start
	}
	if opts.Limit != nil {
		base["limit"] = *opts.Limit
	}
	return base
}

// CreateRedactionsText creates redactions for literal text matches.
func CreateRedactionsText(text string, content map[string]any, opts *RedactionSearchOptions) Action {
	return &CreateRedactionsAction{
		Strategy:        "text",
		StrategyOptions: redactionStrategyOptions(map[string]any{"text": text}, opts),
		Content:         content,
	}
}

// CreateRedactionsRegex creates redactions for regex matches.
func CreateRedactionsRegex(regex string, content map[string]any, opts *RedactionSearchOptions) Action {
	return &CreateRedactionsAction{
		Strategy:        "regex",
		StrategyOptions: redactionStrategyOptions(map[string]any{"regex": regex}, opts),
		Content:         content,
	}
}

// CreateRedactionsPreset creates redactions for a preset pattern such
// as "email-address" or "credit-card-number".
func CreateRedactionsPreset(preset string, content map[string]any, opts *RedactionSearchOptions) Action {
	return &CreateRedactionsAction{
		Strategy:        "preset",
		StrategyOptions: redactionStrategyOptions(map[string]any{"preset": preset}, opts),
		Content:         content,
	}
}

// ApplyRedactionsAction applies previously created redactions.
type ApplyRedactionsAction struct{}

func (*ApplyRedactionsAction) isAction() {}

func (a *ApplyRedactionsAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": "applyRedactions"})
}

// ApplyRedactions creates an apply-redactions action.
func ApplyRedactions() Action {
	return &ApplyRedactionsAction{}
}

// marshalTyped serializes v and injects the action "type" tag.
func marshalTyped(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	fields["type"] = json.RawMessage(`"` + typ + `"`)
	return json.Marshal(fields)
}
