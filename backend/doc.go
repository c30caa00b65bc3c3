// Package backend provides a pluggable rendering backend abstraction.
//
// A backend turns a document model into an output file. Backends implement
// the Renderer capability contract (CanRender/Render) and are registered
// under unique names; callers select one by name or rely on the configured
// default. Capability queries are informational only: the registry never
// falls back from one backend to another.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The canvas backend is automatically registered on import:
//
//	import _ "github.com/mmartin-sub/pdfrebuilder/backend"
//
// # Rendering
//
// Dispatch handles the shared parts of a render request: default backend
// selection, output-extension defaulting, format derivation, and the final
// on-disk verification of the output file:
//
//	err := backend.Dispatch(ctx, "", &backend.RenderTarget{
//		Document:   doc,
//		OutputPath: "out.png",
//		Resolver:   resolver,
//	})
//
// Rendering failures are typed (RenderError wrapping ErrEmptyDocument,
// ErrUnsupportedFormat, or ErrOutputVerificationFailed) and always
// propagate to the caller; a broken render never produces a default or
// guessed output.
//
// # Available Backends
//
//   - "canvas": tdewolff/canvas based renderer (png, pdf)
package backend
