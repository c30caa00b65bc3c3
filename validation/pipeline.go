package validation

import (
	"errors"
	"fmt"
	"image"

	"github.com/mmartin-sub/pdfrebuilder"
)

// ErrUnknownStrategy is returned when a requested strategy is not
// registered with the pipeline.
var ErrUnknownStrategy = errors.New("validation: unknown strategy")

// Config holds the tunable parameters of a validation run.
type Config struct {
	// SimilarityThreshold is the minimum score that counts as a pass.
	SimilarityThreshold float64

	// RenderingDPI is the resolution used when a PDF input must be
	// rasterized before comparison.
	RenderingDPI int

	// GenerateDiffImages writes a difference visualization next to the
	// compared output when a comparison scores below 1.
	GenerateDiffImages bool

	// PixelThreshold is the per-channel delta tolerated by the pixel
	// strategy before a pixel counts as different.
	PixelThreshold int
}

// DefaultConfig returns the standard validation parameters.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.99,
		RenderingDPI:        300,
		GenerateDiffImages:  false,
		PixelThreshold:      5,
	}
}

// Result reports one comparison. It is produced fresh per call and never
// cached; repeated validation of an unchanged image pair yields identical
// Results.
type Result struct {
	Passed        bool
	Score         float64 // in [0, 1]
	StrategyUsed  string
	ErrorMessage  string // set when the strategy failed internally
	DiffImagePath string // set when a diff image was written
}

// Strategy is one comparison method, registered under a unique name.
type Strategy interface {
	Name() string
	Compare(a, b image.Image, cfg Config) (float64, error)
}

// Pipeline applies a configured primary strategy to image pairs. It holds
// no per-call state; the strategy set and primary name are fixed after
// setup.
type Pipeline struct {
	cfg        Config
	strategies map[string]Strategy
	primary    string
}

// NewPipeline creates a pipeline with the built-in strategies registered
// and "ssim" as the primary.
func NewPipeline(cfg Config) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		strategies: map[string]Strategy{},
		primary:    StrategySSIM,
	}
	p.RegisterStrategy(SSIMStrategy{})
	p.RegisterStrategy(PixelStrategy{})
	return p
}

// RegisterStrategy adds (or replaces) a named strategy. Registered
// strategies other than the primary are only used when explicitly selected
// via ValidateWith.
func (p *Pipeline) RegisterStrategy(s Strategy) {
	p.strategies[s.Name()] = s
}

// SetPrimary selects the strategy Validate uses.
func (p *Pipeline) SetPrimary(name string) error {
	if _, ok := p.strategies[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	p.primary = name
	return nil
}

// Primary returns the configured primary strategy name.
func (p *Pipeline) Primary() string { return p.primary }

// Validate compares the images at pathA and pathB with the primary
// strategy. Strategy-internal failures are captured into the Result
// (Passed=false, Score=0, ErrorMessage set) rather than raised; no other
// registered strategy is consulted.
func (p *Pipeline) Validate(pathA, pathB string) Result {
	return p.ValidateWith(p.primary, pathA, pathB)
}

// ValidateStrict behaves like Validate but re-raises a captured strategy
// failure as an error, for callers that treat validation-engine failure as
// fatal rather than "score 0".
func (p *Pipeline) ValidateStrict(pathA, pathB string) (Result, error) {
	res := p.Validate(pathA, pathB)
	if res.ErrorMessage != "" {
		return res, fmt.Errorf("validation: %s strategy failed: %s", res.StrategyUsed, res.ErrorMessage)
	}
	return res, nil
}

// ValidateWith compares with an explicitly named strategy, bypassing the
// primary selection.
func (p *Pipeline) ValidateWith(name, pathA, pathB string) Result {
	res := Result{StrategyUsed: name}
	strategy, ok := p.strategies[name]
	if !ok {
		res.ErrorMessage = fmt.Sprintf("unknown strategy %q", name)
		return res
	}

	imgA, err := loadComparable(pathA, p.cfg.RenderingDPI)
	if err != nil {
		res.ErrorMessage = err.Error()
		return res
	}
	imgB, err := loadComparable(pathB, p.cfg.RenderingDPI)
	if err != nil {
		res.ErrorMessage = err.Error()
		return res
	}

	score, err := strategy.Compare(imgA, imgB, p.cfg)
	if err != nil {
		res.ErrorMessage = err.Error()
		pdfrebuilder.Logger().Warn("comparison strategy failed",
			"strategy", name, "a", pathA, "b", pathB, "error", err)
		return res
	}

	res.Score = score
	res.Passed = score >= p.cfg.SimilarityThreshold
	pdfrebuilder.Logger().Debug("comparison complete",
		"strategy", name, "score", score, "passed", res.Passed)

	if p.cfg.GenerateDiffImages && score < 1.0 {
		diffPath := pathB + ".diff.png"
		if err := writeDiffImage(imgA, imgB, p.cfg.PixelThreshold, diffPath); err != nil {
			pdfrebuilder.Logger().Warn("diff image generation failed",
				"path", diffPath, "error", err)
		} else {
			res.DiffImagePath = diffPath
		}
	}
	return res
}
