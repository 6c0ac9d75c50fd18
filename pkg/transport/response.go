package transport

import "net/http"

// ResponseKind selects how a successful response body is decoded. The
// caller declares it per request based on the workflow's output type.
type ResponseKind int

const (
	// KindBinary returns the raw response bytes.
	KindBinary ResponseKind = iota
	// KindText decodes the body as a UTF-8 string.
	KindText
	// KindJSON unmarshals the body into structured data.
	KindJSON
)

func (k ResponseKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindText:
		return "text"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Response is a decoded success response. Exactly one of Body, Text, or
// JSON is populated, according to the requested ResponseKind.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Text       string
	JSON       any
}
