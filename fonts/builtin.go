package fonts

import "golang.org/x/image/font/gofont/goregular"

// BuiltinFontName is the registered name of the terminal fallback face.
// A ResolvedFont carrying this name has an empty FilePath; renderers load
// the face from BuiltinFontData instead of disk.
const BuiltinFontName = "GoRegular"

// BuiltinFontData returns the TTF bytes of the built-in base font.
func BuiltinFontData() []byte {
	return goregular.TTF
}
