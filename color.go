package pdfrebuilder

import (
	"encoding/json"
	"image/color"
	"math"
)

// Color represents an opaque color with red, green, and blue components.
// Each component is in the range [0, 1].
type Color struct {
	R, G, B float64
}

// Color converts Color to the standard color.Color interface.
func (c Color) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: 255,
	}
}

// RGB creates a color from components in [0, 1].
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// ParseColor converts a loosely-typed color value from the intermediate
// document format into a *Color. It accepts:
//
//   - nil: no color, returns nil
//   - an integer packed as 0xRRGGBB (int, int64, or a float64 holding an
//     integral value, as produced by JSON decoding)
//   - a 3- or 4-element numeric sequence; a 4th (alpha) component is dropped
//     before normalization
//
// Sequences are treated as already-normalized [0, 1] floats unless any
// component exceeds 1.0, in which case every component is divided by 255.
// This is a heuristic, not a format flag: a sequence (200, 0.5, 0) is
// classified as 0-255 scale because 200 > 1.0 triggers the whole-sequence
// division.
//
// Any other shape logs a warning and resolves to nil (no color), not an
// error.
func ParseColor(v any) *Color {
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		return unpackRGB(int64(val))
	case int64:
		return unpackRGB(val)
	case float64:
		if val == math.Trunc(val) && val >= 0 {
			return unpackRGB(int64(val))
		}
	case []any:
		if c, ok := parseColorSeq(val); ok {
			return c
		}
	case []float64:
		seq := make([]any, len(val))
		for i, f := range val {
			seq[i] = f
		}
		if c, ok := parseColorSeq(seq); ok {
			return c
		}
	}
	Logger().Warn("unrecognized color value, treating as no color", "value", v)
	return nil
}

// unpackRGB splits a packed 0xRRGGBB integer into components.
func unpackRGB(v int64) *Color {
	return &Color{
		R: float64((v>>16)&0xFF) / 255,
		G: float64((v>>8)&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}
}

// parseColorSeq handles 3- and 4-element numeric sequences.
func parseColorSeq(seq []any) (*Color, bool) {
	if len(seq) != 3 && len(seq) != 4 {
		return nil, false
	}
	comps := make([]float64, 0, 3)
	// Drop the 4th (alpha) component before normalization.
	for _, v := range seq[:3] {
		f, ok := asFloat(v)
		if !ok {
			return nil, false
		}
		comps = append(comps, f)
	}
	if len(seq) == 4 {
		if _, ok := asFloat(seq[3]); !ok {
			return nil, false
		}
	}
	scale := 1.0
	for _, f := range comps {
		if f > 1.0 {
			scale = 255.0
			break
		}
	}
	return &Color{R: comps[0] / scale, G: comps[1] / scale, B: comps[2] / scale}, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}
