// Package fonts implements the font resolution service.
//
// Resolution turns a (requested font, sample text) pair into a registrable
// font that is guaranteed to render: the catalog of local font files is
// consulted first, a remote provider is tried next, and a built-in base
// font is the terminal fallback. Every substitution along the way is
// recorded in a Tracker for later reporting.
//
// # Components
//
//   - Catalog: enumerates locally available font files (manual + downloaded
//     directories) into name/path entries
//   - Provider: fetches a font family from a remote source with bounded
//     retries, writing files to the downloaded directory
//   - Covers: reports whether a font file has glyphs for every character of
//     a sample text
//   - Resolver: orchestrates the above with a per-run registration cache
//     and a download attempt set
//
// # Concurrency
//
// A Resolver is not safe for concurrent use. Its cache, tracker, and
// download attempt set are plain per-instance state; the cache-miss,
// compute, cache-insert path is not atomic. Callers resolving from multiple
// goroutines must serialize access externally, or use one Resolver per
// goroutine and accept redundant work.
package fonts
