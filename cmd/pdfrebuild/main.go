// Command pdfrebuild reconstructs a document from its intermediate JSON
// description and optionally verifies the result against a reference image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mmartin-sub/pdfrebuilder"
	"github.com/mmartin-sub/pdfrebuilder/backend"
	"github.com/mmartin-sub/pdfrebuilder/fonts"
	"github.com/mmartin-sub/pdfrebuilder/validation"
)

func main() {
	var (
		input       = flag.String("in", "layout.json", "intermediate document JSON")
		output      = flag.String("out", "out.png", "output file (extension selects format)")
		reference   = flag.String("ref", "", "reference image to validate against")
		backendName = flag.String("backend", "", "renderer backend (default: registry default)")
		manualDir   = flag.String("manual-fonts", "fonts/manual", "manually installed font directory")
		downloadDir = flag.String("download-fonts", "fonts/auto", "downloaded font directory")
		threshold   = flag.Float64("threshold", 0.99, "similarity threshold for validation")
		dpi         = flag.Int("dpi", backend.DefaultDPI, "raster resolution")
		diff        = flag.Bool("diff", false, "write a diff image on mismatch")
		verbose     = flag.Bool("v", false, "enable logging to stderr")
	)
	flag.Parse()

	if *verbose {
		pdfrebuilder.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}
	ctx := context.Background()

	doc, err := pdfrebuilder.LoadDocument(*input)
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}
	stats := pdfrebuilder.Stats(doc)
	fmt.Printf("%s: %d pages, %d layers, %d elements, fonts: %v\n",
		*input, stats.Pages, stats.Layers, stats.Elements(), stats.FontNames)

	resolver := fonts.NewResolver(fonts.Config{
		ManualDir:     *manualDir,
		DownloadedDir: *downloadDir,
	})

	err = backend.Dispatch(ctx, *backendName, &backend.RenderTarget{
		Document:   doc,
		OutputPath: *output,
		DPI:        *dpi,
		Resolver:   resolver,
	})
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	fmt.Printf("Rendered %s\n", *output)

	printSubstitutions(resolver.Tracker())

	if *reference == "" {
		return
	}
	cfg := validation.DefaultConfig()
	cfg.SimilarityThreshold = *threshold
	cfg.RenderingDPI = *dpi
	cfg.GenerateDiffImages = *diff
	result := validation.NewPipeline(cfg).Validate(*reference, *output)
	if result.ErrorMessage != "" {
		log.Fatalf("Validation failed to run (%s): %s", result.StrategyUsed, result.ErrorMessage)
	}
	fmt.Printf("Validation (%s): score %.4f, threshold %.4f\n",
		result.StrategyUsed, result.Score, *threshold)
	if result.DiffImagePath != "" {
		fmt.Printf("Diff image: %s\n", result.DiffImagePath)
	}
	if !result.Passed {
		fmt.Println("FAILED")
		os.Exit(1)
	}
	fmt.Println("PASSED")
}

func printSubstitutions(tracker *fonts.Tracker) {
	records := tracker.Records()
	if len(records) == 0 {
		return
	}
	fmt.Printf("Font substitutions (%d):\n", len(records))
	for _, r := range records {
		fmt.Printf("  %s -> %s (%s)\n", r.OriginalFont, r.SubstitutedFont, r.Reason)
	}
}
