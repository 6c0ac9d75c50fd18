// Package build models the instruction document sent to the processor
// API's build endpoint: an ordered list of parts, an ordered list of
// global actions, and a single output descriptor. The types here
// marshal directly to the wire format; local files appear as symbolic
// asset keys and remote files as {"url": ...} objects.
package build

import "encoding/json"

// Instructions is the request payload under construction. Part order is
// semantically significant: it is document order in the final output.
// Global actions run after per-part actions.
type Instructions struct {
	Parts   []Part   `json:"parts"`
	Actions []Action `json:"actions,omitempty"`
	Output  Output   `json:"output,omitempty"`
}

// FileHandle references a file within the instruction document: either
// a symbolic asset key for a not-yet-uploaded local file, or a remote
// URL. Exactly one field is set.
type FileHandle struct {
	Key string
	URL string
}

func (h FileHandle) MarshalJSON() ([]byte, error) {
	if h.URL != "" {
		return json.Marshal(struct {
			URL string `json:"url"`
		}{URL: h.URL})
	}
	return json.Marshal(h.Key)
}

// PageRange selects a sub-range of pages. Start and end are inclusive
// and passed through to the server verbatim; the client performs no
// index arithmetic.
type PageRange struct {
	Start *int `json:"start,omitempty"`
	End   *int `json:"end,omitempty"`
}

// Pages is a convenience constructor for an inclusive page range.
func Pages(start, end int) *PageRange {
	return &PageRange{Start: &start, End: &end}
}

// PageLayout describes blank-page or HTML rendering geometry.
type PageLayout struct {
	Orientation string        `json:"orientation,omitempty"`
	Size        string        `json:"size,omitempty"`
	Margin      *LayoutMargin `json:"margin,omitempty"`
}

// LayoutMargin is a page margin in points.
type LayoutMargin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}
