package build

import "encoding/json"

// Part is one document-contributing unit in a build request. Variants:
// FilePart, HTMLPart, NewPagePart, DocumentPart.
type Part interface {
	isPart()
}

// FilePart contributes a file, referenced by asset key or remote URL.
type FilePart struct {
	File        FileHandle `json:"file"`
	Password    string     `json:"password,omitempty"`
	Pages       *PageRange `json:"pages,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Actions     []Action   `json:"actions,omitempty"`
}

func (*FilePart) isPart() {}

// FilePartOptions carries the optional fields of a file part.
type FilePartOptions struct {
	Password    string
	Pages       *PageRange
	ContentType string
}

// HTMLPart contributes rendered HTML plus its auxiliary assets (CSS,
// images). Assets are always local files, referenced by asset key.
type HTMLPart struct {
	HTML    FileHandle  `json:"html"`
	Assets  []string    `json:"assets,omitempty"`
	Layout  *PageLayout `json:"layout,omitempty"`
	Actions []Action    `json:"actions,omitempty"`
}

func (*HTMLPart) isPart() {}

// HTMLPartOptions carries the optional fields of an HTML part.
type HTMLPartOptions struct {
	Layout *PageLayout
}

// NewPagePart contributes one or more blank pages.
type NewPagePart struct {
	PageCount int         `json:"pageCount,omitempty"`
	Layout    *PageLayout `json:"layout,omitempty"`
	Actions   []Action    `json:"actions,omitempty"`
}

func (*NewPagePart) isPart() {}

func (p *NewPagePart) MarshalJSON() ([]byte, error) {
	type alias NewPagePart
	return json.Marshal(struct {
		Page string `json:"page"`
		*alias
	}{Page: "new", alias: (*alias)(p)})
}

// NewPagePartOptions carries the optional fields of a blank-page part.
type NewPagePartOptions struct {
	PageCount int
	Layout    *PageLayout
}

// DocumentPart references a document already stored server-side by its
// opaque ID, optionally addressing a named layer.
type DocumentPart struct {
	Document DocumentRef `json:"document"`
	Password string      `json:"password,omitempty"`
	Pages    *PageRange  `json:"pages,omitempty"`
	Actions  []Action    `json:"actions,omitempty"`
}

func (*DocumentPart) isPart() {}

// DocumentRef identifies a server-side document.
type DocumentRef struct {
	ID    string `json:"id"`
	Layer string `json:"layer,omitempty"`
}

// DocumentPartOptions carries the optional fields of a document part.
type DocumentPartOptions struct {
	Layer    string
	Password string
	Pages    *PageRange
}
