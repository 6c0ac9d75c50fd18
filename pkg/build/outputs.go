package build

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nutrient-dws/client-go/pkg/apierror"
)

// Output is the single declared target format for the finished
// document. Exactly one output exists per instruction document.
type Output interface {
	isOutput()
}

// Metadata sets document metadata on PDF-family outputs.
type Metadata struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// PageLabel assigns a label to a set of pages.
type PageLabel struct {
	Pages []int  `json:"pages"`
	Label string `json:"label"`
}

// OptimizeOptions tunes PDF size optimization.
type OptimizeOptions struct {
	GrayscaleText            bool `json:"grayscaleText,omitempty"`
	GrayscaleGraphics        bool `json:"grayscaleGraphics,omitempty"`
	GrayscaleImages          bool `json:"grayscaleImages,omitempty"`
	GrayscaleFormFields      bool `json:"grayscaleFormFields,omitempty"`
	GrayscaleAnnotations     bool `json:"grayscaleAnnotations,omitempty"`
	DisableImages            bool `json:"disableImages,omitempty"`
	MRCCompression           bool `json:"mrcCompression,omitempty"`
	ImageOptimizationQuality int  `json:"imageOptimizationQuality,omitempty"`
	Linearize                bool `json:"linearize,omitempty"`
}

// PDFOptions are the options shared by the PDF-family outputs.
type PDFOptions struct {
	Metadata        *Metadata        `json:"metadata,omitempty"`
	Labels          []PageLabel      `json:"labels,omitempty"`
	UserPassword    string           `json:"user_password,omitempty"`
	OwnerPassword   string           `json:"owner_password,omitempty"`
	UserPermissions []string         `json:"user_permissions,omitempty"`
	Optimize        *OptimizeOptions `json:"optimize,omitempty"`
}

// PDFOutput produces a plain PDF. It is also the default output when a
// workflow declares none.
type PDFOutput struct {
	PDFOptions
}

func (*PDFOutput) isOutput() {}

func (o *PDFOutput) MarshalJSON() ([]byte, error) {
	type alias PDFOutput
	return marshalTyped("pdf", (*alias)(o))
}

// PDFAOptions extend PDFOptions with PDF/A conformance controls.
type PDFAOptions struct {
	Conformance   string `json:"conformance,omitempty"`
	Vectorization *bool  `json:"vectorization,omitempty"`
	Rasterization *bool  `json:"rasterization,omitempty"`
	PDFOptions
}

// PDFAOutput produces an archival PDF/A document.
type PDFAOutput struct {
	PDFAOptions
}

func (*PDFAOutput) isOutput() {}

func (o *PDFAOutput) MarshalJSON() ([]byte, error) {
	type alias PDFAOutput
	return marshalTyped("pdfa", (*alias)(o))
}

// PDFUAOutput produces an accessible PDF/UA document.
type PDFUAOutput struct {
	PDFOptions
}

func (*PDFUAOutput) isOutput() {}

func (o *PDFUAOutput) MarshalJSON() ([]byte, error) {
	type alias PDFUAOutput
	return marshalTyped("pdfua", (*alias)(o))
}

// ImageOptions constrain image rendering. At least one of DPI, Width,
// or Height must be supplied; an unconstrained image request is
// rejected rather than silently defaulted.
type ImageOptions struct {
	Pages  *PageRange `json:"pages,omitempty"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`
	DPI    int        `json:"dpi,omitempty"`
}

// ImageOutput renders pages to png, jpeg, jpg, or webp.
type ImageOutput struct {
	Format string `json:"format"`
	ImageOptions
}

func (*ImageOutput) isOutput() {}

func (o *ImageOutput) MarshalJSON() ([]byte, error) {
	type alias ImageOutput
	return marshalTyped("image", (*alias)(o))
}

// Validate enforces the format set and the dimension requirement.
func (o *ImageOutput) Validate() error {
	if err := validation.ValidateStruct(o,
		validation.Field(&o.Format, validation.Required, validation.In("png", "jpeg", "jpg", "webp")),
	); err != nil {
		return apierror.NewValidationError(err.Error(), map[string]any{"format": o.Format})
	}
	if o.DPI == 0 && o.Width == 0 && o.Height == 0 {
		return apierror.NewValidationError(
			"image output requires at least one of the following options: dpi, height, width", nil)
	}
	return nil
}

// OfficeOutput converts the document to docx, xlsx, or pptx. Its wire
// type tag is the format itself.
type OfficeOutput struct {
	Format string
}

func (*OfficeOutput) isOutput() {}

func (o *OfficeOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": o.Format})
}

// Validate enforces the supported office format set.
func (o *OfficeOutput) Validate() error {
	if err := validation.Validate(o.Format, validation.Required, validation.In("docx", "xlsx", "pptx")); err != nil {
		return apierror.NewValidationError("invalid office format: "+err.Error(), map[string]any{"format": o.Format})
	}
	return nil
}

// HTMLOutput converts the document to HTML, either paginated ("page")
// or reflowed ("reflow").
type HTMLOutput struct {
	Layout string `json:"layout"`
}

func (*HTMLOutput) isOutput() {}

func (o *HTMLOutput) MarshalJSON() ([]byte, error) {
	type alias HTMLOutput
	return marshalTyped("html", (*alias)(o))
}

// MarkdownOutput converts the document to Markdown.
type MarkdownOutput struct{}

func (*MarkdownOutput) isOutput() {}

func (o *MarkdownOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": "markdown"})
}

// JSONContentOptions select which content extractions to run.
type JSONContentOptions struct {
	PlainText      bool      `json:"plainText,omitempty"`
	StructuredText bool      `json:"structuredText,omitempty"`
	KeyValuePairs  bool      `json:"keyValuePairs,omitempty"`
	Tables         bool      `json:"tables,omitempty"`
	Language       Languages `json:"language,omitempty"`
}

// JSONContentOutput extracts structured content instead of producing a
// document.
type JSONContentOutput struct {
	JSONContentOptions
}

func (*JSONContentOutput) isOutput() {}

func (o *JSONContentOutput) MarshalJSON() ([]byte, error) {
	type alias JSONContentOutput
	return marshalTyped("json-content", (*alias)(o))
}

// OutputInfo returns the MIME type and suggested filename for an output
// descriptor. It is a static lookup, never consults the server, and
// never fails: unknown outputs fall back to application/octet-stream.
func OutputInfo(o Output) (mimeType, filename string) {
	switch out := o.(type) {
	case *PDFOutput, *PDFAOutput, *PDFUAOutput, nil:
		return "application/pdf", "output.pdf"
	case *ImageOutput:
		format := out.Format
		if format == "" {
			format = "png"
		}
		// jpg keeps its extension but normalizes to the jpeg MIME type.
		if format == "jpg" {
			return "image/jpeg", "output.jpg"
		}
		return "image/" + format, "output." + format
	case *OfficeOutput:
		switch out.Format {
		case "docx":
			return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "output.docx"
		case "xlsx":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "output.xlsx"
		case "pptx":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation", "output.pptx"
		}
		return "application/octet-stream", "output"
	case *HTMLOutput:
		return "text/html", "output.html"
	case *MarkdownOutput:
		return "text/markdown", "output.md"
	default:
		return "application/octet-stream", "output"
	}
}
