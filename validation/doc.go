// Package validation scores rendered output against a reference image.
//
// A Pipeline holds one or more named comparison strategies but is
// configured with exactly one primary strategy. Validate runs the primary
// strategy and reports pass/fail against a similarity threshold; strategy
// errors (unreadable image, dimension mismatch) are captured into the
// Result rather than raised. The pipeline never substitutes another
// registered strategy on failure: secondary strategies are inert unless a
// caller explicitly selects them with ValidateWith. Callers that need
// fail-hard semantics use ValidateStrict, which re-raises the captured
// error.
//
// Comparisons are stateless and independent; scores are never cached.
// Independent comparisons may run concurrently (see ValidateAll).
package validation
