// Package pdfrebuilder reconstructs documents from a structured intermediate
// description, resolving fonts, rendering through interchangeable backends,
// and verifying visual fidelity against a reference.
//
// # Overview
//
// The library is organized around three cooperating pieces:
//   - fonts: the font resolution service, which guarantees every piece of
//     text can be rendered even when the requested typeface is unavailable,
//     tracking every substitution it makes
//   - backend: a registry of named renderer backends, each implementing a
//     capability contract for a given output format
//   - validation: a pipeline that scores rendered output against a reference
//     image using a pluggable comparison strategy and threshold
//
// The root package holds the shared document model, color conversion, and
// logging configuration used by all subpackages.
//
// # Quick Start
//
//	doc, err := pdfrebuilder.LoadDocument("layout.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resolver := fonts.NewResolver(fonts.Config{
//		ManualDir:     "fonts/manual",
//		DownloadedDir: "fonts/auto",
//	})
//
//	err = backend.Dispatch(ctx, "", &backend.RenderTarget{
//		Document:   doc,
//		OutputPath: "out.png",
//		Resolver:   resolver,
//	})
//
//	pipeline := validation.NewPipeline(validation.DefaultConfig())
//	result := pipeline.Validate("out.png", "reference.png")
//
// # Control Flow
//
// A render request first consults the font resolution service for every text
// element's font, then is dispatched to a registered backend; the produced
// artifact and a reference artifact are then passed to the validation
// pipeline to compute a fidelity score.
//
// # Logging
//
// The library produces no log output by default. Call SetLogger to enable
// structured logging for all subpackages.
package pdfrebuilder
