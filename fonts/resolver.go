package fonts

import (
	"context"

	"github.com/mmartin-sub/pdfrebuilder"
)

// FontRequest asks for a font by name that can render a given sample text.
// The pair forms the basis of the registration cache key.
type FontRequest struct {
	Name       string
	SampleText string
}

// ResolvedFont is the outcome of a resolution: a font registrable with a
// renderer. It is immutable once produced and owned by the caller for the
// duration of one render. An empty FilePath refers to the built-in base
// font (see BuiltinFontName).
type ResolvedFont struct {
	RegisteredName string
	FilePath       string
	WasSubstituted bool
}

// Config configures a Resolver.
type Config struct {
	// ManualDir holds manually installed fonts. It takes precedence over
	// DownloadedDir on name collisions.
	ManualDir string

	// DownloadedDir holds fonts fetched by the provider. It is also the
	// destination directory for new downloads.
	DownloadedDir string

	// Provider fetches missing families. Nil selects the Google Fonts
	// provider with default retry policy.
	Provider Provider
}

// Resolver turns font requests into registrable fonts, recording every
// substitution it makes. It owns the registration cache and the download
// attempt set for the lifetime of one run; construct a fresh Resolver per
// run to reset both.
//
// Resolver is not safe for concurrent use; see the package documentation.
type Resolver struct {
	catalog       *Catalog
	provider      Provider
	downloadedDir string
	tracker       *Tracker

	// cache maps name + coverage signature to the finished resolution.
	// Entries are never evicted within a run.
	cache map[string]ResolvedFont

	// attempted holds families whose download already failed this run,
	// preventing repeated network attempts for the same family.
	attempted map[string]struct{}

	// covers is the coverage checker; a field so tests can substitute it.
	covers func(path, sample string) (bool, error)
}

// NewResolver creates a resolver with fresh cache, tracker, and attempt
// set.
func NewResolver(cfg Config) *Resolver {
	provider := cfg.Provider
	if provider == nil {
		provider = NewGoogleFontsProvider()
	}
	return &Resolver{
		catalog:       NewCatalog(cfg.ManualDir, cfg.DownloadedDir),
		provider:      provider,
		downloadedDir: cfg.DownloadedDir,
		tracker:       &Tracker{},
		cache:         map[string]ResolvedFont{},
		attempted:     map[string]struct{}{},
		covers:        Covers,
	}
}

// Tracker exposes the substitution records for reporting. The resolver
// remains the only writer.
func (r *Resolver) Tracker() *Tracker { return r.tracker }

// Catalog exposes the underlying font catalog.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// cacheKey combines the requested name with the coverage signature of the
// sample text, so two texts with the same glyph demands share one entry.
func cacheKey(req FontRequest) string {
	return foldName(req.Name) + "\x00" + CoverageSignature(req.SampleText)
}

// Resolve turns a request into a registrable font. It never fails: when no
// candidate covers the text and the download is exhausted, the built-in
// base font is returned and the failure is observable via the Tracker.
//
// At most one resolution computation happens per distinct (name,
// text-shape) pair per run; later calls are cache hits.
func (r *Resolver) Resolve(ctx context.Context, req FontRequest) ResolvedFont {
	key := cacheKey(req)
	if cached, ok := r.cache[key]; ok {
		pdfrebuilder.Logger().Debug("font cache hit", "font", req.Name)
		return cached
	}
	resolved := r.resolve(ctx, req)
	// Cache write happens exactly once per key, after resolution
	// completes, never speculatively.
	r.cache[key] = resolved
	return resolved
}

func (r *Resolver) resolve(ctx context.Context, req FontRequest) ResolvedFont {
	log := pdfrebuilder.Logger()
	if err := r.catalog.Scan(); err != nil {
		log.Warn("font catalog scan failed", "error", err)
	}

	if resolved, ok := r.pick(req); ok {
		return resolved
	}

	recorded := false
	if _, tried := r.attempted[foldName(req.Name)]; !tried {
		if _, err := r.provider.Fetch(ctx, req.Name, r.downloadedDir); err != nil {
			r.attempted[foldName(req.Name)] = struct{}{}
			r.tracker.Record(req.Name, BuiltinFontName, ReasonDownloadFailed)
			recorded = true
			log.Warn("font download failed, substituting",
				"font", req.Name, "error", err)
		} else {
			// One re-scan and coverage pass after a successful fetch;
			// no further downloads are attempted for this request.
			if err := r.catalog.Scan(); err != nil {
				log.Warn("font catalog rescan failed", "error", err)
			}
			if resolved, ok := r.pick(req); ok {
				return resolved
			}
		}
	}

	if !recorded {
		r.tracker.Record(req.Name, BuiltinFontName, ReasonNotFound)
	}
	log.Warn("font not resolvable, using built-in base font", "font", req.Name)
	return ResolvedFont{RegisteredName: BuiltinFontName, WasSubstituted: true}
}

// pick selects a catalog candidate for the request. An exact-name candidate
// that covers the sample is accepted without a substitution; otherwise the
// first covering candidate in scan order is accepted and a NoGlyphCoverage
// substitution is recorded.
func (r *Resolver) pick(req FontRequest) (ResolvedFont, bool) {
	log := pdfrebuilder.Logger()

	exact, haveExact := r.catalog.Lookup(req.Name)
	if haveExact {
		ok, err := r.covers(exact.Path, req.SampleText)
		if err != nil {
			log.Debug("coverage check failed", "font", exact.Name, "error", err)
		}
		if ok {
			return ResolvedFont{RegisteredName: exact.Name, FilePath: exact.Path}, true
		}
	}

	for _, e := range r.catalog.Entries() {
		if haveExact && e.Path == exact.Path {
			continue
		}
		ok, err := r.covers(e.Path, req.SampleText)
		if err != nil {
			log.Debug("coverage check failed", "font", e.Name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		r.tracker.Record(req.Name, e.Name, ReasonNoGlyphCoverage)
		log.Warn("font substituted for glyph coverage",
			"requested", req.Name, "substituted", e.Name)
		return ResolvedFont{RegisteredName: e.Name, FilePath: e.Path, WasSubstituted: true}, true
	}
	return ResolvedFont{}, false
}
