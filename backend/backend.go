package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmartin-sub/pdfrebuilder"
	"github.com/mmartin-sub/pdfrebuilder/fonts"
)

// Common backend errors. RenderError wraps one of these as its Kind, so
// callers match with errors.Is.
var (
	// ErrEmptyDocument is returned when a document has no pages to render.
	ErrEmptyDocument = errors.New("backend: empty document")

	// ErrUnsupportedFormat is returned when a backend cannot produce the
	// requested output format.
	ErrUnsupportedFormat = errors.New("backend: unsupported format")

	// ErrOutputVerificationFailed is returned when a render reported
	// success but left no readable file at the output path.
	ErrOutputVerificationFailed = errors.New("backend: output verification failed")

	// ErrUnknownBackend is returned when the requested backend is not
	// registered.
	ErrUnknownBackend = errors.New("backend: unknown backend")
)

// RenderError is a typed rendering failure. All rendering failures are
// fatal to the single render call; no partial output is considered valid.
type RenderError struct {
	Kind    error  // one of the sentinel errors above
	Backend string // backend name, if known
	Msg     string
}

func (e *RenderError) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *RenderError) Unwrap() error { return e.Kind }

// renderErrorf builds a RenderError with a formatted detail message.
func renderErrorf(kind error, backend, format string, args ...any) error {
	return &RenderError{Kind: kind, Backend: backend, Msg: fmt.Sprintf(format, args...)}
}

// RenderTarget is the read-only input to a render call.
type RenderTarget struct {
	// Document is the intermediate description to render.
	Document *pdfrebuilder.DocumentModel

	// OutputPath is where the backend must leave a readable file on
	// success. Its extension determines the output format; Dispatch
	// amends an extension-less path with the default format.
	OutputPath string

	// OutputFormat is derived from OutputPath by Dispatch when empty.
	OutputFormat string

	// DPI is the raster resolution. Zero selects DefaultDPI.
	DPI int

	// Options carries backend-specific settings.
	Options map[string]any

	// Resolver supplies fonts for text elements. A nil resolver binds
	// every text element to the built-in base font.
	Resolver *fonts.Resolver
}

// DefaultDPI is the raster resolution used when RenderTarget.DPI is zero.
const DefaultDPI = 300

// DefaultFormat is the output format assumed when the output path carries
// no extension.
const DefaultFormat = "png"

// Renderer is the capability contract every backend implements.
//
// Backends must be registered via Register() and are selected by name via
// Dispatch() or Get().
type Renderer interface {
	// Name returns the backend identifier (e.g. "canvas").
	Name() string

	// CanRender reports whether the backend can render the document to
	// the given output format. It is a pure capability query with no
	// side effects, used by callers to pre-validate before dispatching;
	// the registry never auto-selects among backends by capability.
	CanRender(doc *pdfrebuilder.DocumentModel, outputFormat string) bool

	// Render produces the output file described by target. It fails with
	// a RenderError; no partial output is valid on failure.
	Render(ctx context.Context, target *RenderTarget) error
}
