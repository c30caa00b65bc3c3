package fonts

import "time"

// Reason classifies why a substitution was made.
type Reason string

// Substitution reasons, from least to most specific.
const (
	// ReasonNotFound: no catalog candidate matched and no more specific
	// failure occurred.
	ReasonNotFound Reason = "not_found"

	// ReasonNoGlyphCoverage: a candidate was found but the requested font
	// could not cover the sample text, so another font was accepted.
	ReasonNoGlyphCoverage Reason = "no_glyph_coverage"

	// ReasonDownloadFailed: the remote fetch for the family failed after
	// all retries.
	ReasonDownloadFailed Reason = "download_failed"
)

// SubstitutionRecord documents one font substitution. Records are
// append-only and never mutated after creation.
type SubstitutionRecord struct {
	OriginalFont    string
	SubstitutedFont string
	Reason          Reason
	Timestamp       time.Time
}

// Tracker accumulates substitution records for the lifetime of a resolver.
// It is write-owned by the resolver and shared-read by reporting consumers;
// like the resolver itself it is not internally synchronized.
type Tracker struct {
	records []SubstitutionRecord
}

// Record appends a substitution.
func (t *Tracker) Record(original, substituted string, reason Reason) {
	t.records = append(t.records, SubstitutionRecord{
		OriginalFont:    original,
		SubstitutedFont: substituted,
		Reason:          reason,
		Timestamp:       time.Now(),
	})
}

// Records returns a copy of all substitution records in append order.
func (t *Tracker) Records() []SubstitutionRecord {
	out := make([]SubstitutionRecord, len(t.records))
	copy(out, t.records)
	return out
}

// CountByReason returns the number of substitutions per reason.
func (t *Tracker) CountByReason() map[Reason]int {
	counts := map[Reason]int{}
	for _, r := range t.records {
		counts[r.Reason]++
	}
	return counts
}

// Len returns the total number of recorded substitutions.
func (t *Tracker) Len() int { return len(t.records) }
