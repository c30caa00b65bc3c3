package fonts

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"unicode"

	"github.com/go-text/typesetting/font"
	"golang.org/x/text/unicode/norm"
)

// Covers reports whether the font file at path contains a glyph for every
// character of sample. Control characters are not required to have glyphs.
// The sample is NFC-normalized before the lookup so that composed and
// decomposed spellings of the same text agree.
func Covers(path, sample string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("fonts: read font %s: %w", path, err)
	}
	return coversData(data, sample)
}

// coversData is the in-memory form of Covers.
func coversData(data []byte, sample string) (bool, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("fonts: parse font: %w", err)
	}
	for _, r := range norm.NFC.String(sample) {
		if unicode.IsControl(r) {
			continue
		}
		if _, ok := face.NominalGlyph(r); !ok {
			return false, nil
		}
	}
	return true, nil
}

// CoverageSignature reduces a sample text to its set of distinct
// NFC-normalized runes in sorted order. Two texts with the same signature
// place identical glyph demands on a font, so the signature is the
// text-shape component of the resolution cache key.
func CoverageSignature(sample string) string {
	seen := map[rune]bool{}
	var runes []rune
	for _, r := range norm.NFC.String(sample) {
		if unicode.IsControl(r) || seen[r] {
			continue
		}
		seen[r] = true
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}
