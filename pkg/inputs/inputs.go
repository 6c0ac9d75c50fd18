// Package inputs normalizes the file inputs accepted by the client: a
// filesystem path, an in-memory byte slice, an io.Reader, or a remote
// URL. Local inputs resolve to raw bytes plus a suggested filename;
// remote URLs are referenced by URL in the instruction document and are
// never downloaded by the client.
package inputs

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nutrient-dws/client-go/pkg/apierror"
)

// defaultFilename is used when an input carries no usable name.
const defaultFilename = "document"

type kind int

const (
	kindNone kind = iota
	kindPath
	kindBytes
	kindReader
	kindURL
)

// FileInput is an opaque reference to a local or remote file source.
// The zero value is invalid; use one of the From* constructors.
type FileInput struct {
	kind   kind
	path   string
	data   []byte
	reader io.Reader
	rawURL string
	name   string
}

// FromPath references a file on the local filesystem.
func FromPath(path string) FileInput {
	return FileInput{kind: kindPath, path: path}
}

// FromBytes references an in-memory document. The name is used as the
// upload filename and may be empty.
func FromBytes(data []byte, name string) FileInput {
	return FileInput{kind: kindBytes, data: data, name: name}
}

// FromReader references a document read from r. The reader is drained
// exactly once, at materialization time.
func FromReader(r io.Reader, name string) FileInput {
	return FileInput{kind: kindReader, reader: r, name: name}
}

// FromURL references a remote document by http(s) URL.
func FromURL(rawURL string) FileInput {
	return FileInput{kind: kindURL, rawURL: rawURL}
}

// IsZero reports whether the input was never initialized.
func (in FileInput) IsZero() bool {
	return in.kind == kindNone
}

// URL returns the remote URL, or the empty string for local inputs.
func (in FileInput) URL() string {
	return in.rawURL
}

// IsRemote reports whether the input references a remote http(s) URL.
// Remote inputs are passed through to the instruction document by URL
// and never consume an asset key.
func IsRemote(in FileInput) bool {
	if in.kind != kindURL {
		return false
	}
	u, err := url.Parse(in.rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Validate checks that the input has a recognized shape.
func Validate(in FileInput) error {
	switch in.kind {
	case kindPath:
		if in.path == "" {
			return apierror.NewValidationError("file path must not be empty", nil)
		}
	case kindBytes:
		if in.data == nil {
			return apierror.NewValidationError("byte input must not be nil", nil)
		}
	case kindReader:
		if in.reader == nil {
			return apierror.NewValidationError("reader input must not be nil", nil)
		}
	case kindURL:
		if !IsRemote(in) {
			return apierror.NewValidationError(
				"URL input must be an absolute http or https URL",
				map[string]any{"url": in.rawURL},
			)
		}
	default:
		return apierror.NewValidationError("invalid file input provided to workflow", nil)
	}
	return nil
}

// NormalizedFile is a local input resolved to transmittable bytes.
type NormalizedFile struct {
	Data     []byte
	Filename string
}

// Resolve materializes a local input into bytes plus a suggested
// filename, reading path inputs through fsys. A missing path yields an
// error satisfying errors.Is(err, fs.ErrNotExist) so callers can
// distinguish "file not found" from other I/O failures. Remote inputs
// cannot be resolved locally and return a validation error.
func Resolve(fsys afero.Fs, in FileInput) (NormalizedFile, error) {
	switch in.kind {
	case kindPath:
		data, err := afero.ReadFile(fsys, in.path)
		if err != nil {
			return NormalizedFile{}, fmt.Errorf("read %s: %w", in.path, err)
		}
		return NormalizedFile{Data: data, Filename: filepath.Base(in.path)}, nil
	case kindBytes:
		return NormalizedFile{Data: in.data, Filename: in.filenameOrDefault()}, nil
	case kindReader:
		data, err := io.ReadAll(in.reader)
		if err != nil {
			return NormalizedFile{}, fmt.Errorf("read input %q: %w", in.filenameOrDefault(), err)
		}
		return NormalizedFile{Data: data, Filename: in.filenameOrDefault()}, nil
	case kindURL:
		return NormalizedFile{}, apierror.NewValidationError(
			"remote file input cannot be materialized locally",
			map[string]any{"url": in.rawURL},
		)
	default:
		return NormalizedFile{}, apierror.NewValidationError("invalid file input provided to workflow", nil)
	}
}

func (in FileInput) filenameOrDefault() string {
	if in.name != "" {
		return in.name
	}
	return defaultFilename
}
