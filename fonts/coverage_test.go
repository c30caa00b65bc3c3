package fonts

import (
	"os"
	"path/filepath"
	"testing"
)

// writeBuiltinFont writes the built-in base font into dir under the given
// filename and returns its path. It gives tests a real parseable TTF
// without shipping fixtures.
func writeBuiltinFont(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuiltinFontData(), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	return path
}

func TestCovers(t *testing.T) {
	path := writeBuiltinFont(t, t.TempDir(), "base.ttf")

	tests := []struct {
		name   string
		sample string
		want   bool
	}{
		{name: "basic latin", sample: "Hello, World!", want: true},
		{name: "empty sample", sample: "", want: true},
		{name: "control characters ignored", sample: "a\tb\nc", want: true},
		{name: "cjk not covered", sample: "こんにちは", want: false},
		{name: "mixed latin and cjk", sample: "Hello 世界", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Covers(path, tt.sample)
			if err != nil {
				t.Fatalf("Covers: %v", err)
			}
			if got != tt.want {
				t.Errorf("Covers(%q) = %v, want %v", tt.sample, got, tt.want)
			}
		})
	}
}

func TestCoversErrors(t *testing.T) {
	if _, err := Covers(filepath.Join(t.TempDir(), "missing.ttf"), "x"); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Covers(bad, "x"); err == nil {
		t.Error("expected error for unparsable font")
	}
}

func TestCoverageSignature(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dedup and sort", in: "hello", want: "ehlo"},
		{name: "empty", in: "", want: ""},
		{name: "controls dropped", in: "b\na\t", want: "ab"},
		{name: "repeated text same shape", in: "abcabcabc", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverageSignature(tt.in); got != tt.want {
				t.Errorf("CoverageSignature(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoverageSignatureNormalizes(t *testing.T) {
	composed := "café"        // é as a single rune
	decomposed := "café"     // e + combining acute
	if CoverageSignature(composed) != CoverageSignature(decomposed) {
		t.Errorf("composed and decomposed forms should share a signature: %q vs %q",
			CoverageSignature(composed), CoverageSignature(decomposed))
	}
}
