package fonts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-text/typesetting/font"

	"github.com/mmartin-sub/pdfrebuilder"
)

// fontExtensions lists the file extensions the catalog treats as fonts.
var fontExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
}

// Entry is a single catalog candidate: a font family name mapped to the
// file that provides it.
type Entry struct {
	Name string
	Path string
}

// Catalog enumerates locally available font files. Two directories are
// scanned in priority order: the manual directory first, then the
// downloaded directory. On a name collision the first match wins, so
// manually installed fonts always shadow downloaded ones.
type Catalog struct {
	manualDir     string
	downloadedDir string

	entries []Entry          // scan order, deduplicated by name
	byName  map[string]Entry // key: folded name
}

// NewCatalog creates a catalog over the given directories. Either directory
// may be empty or missing; Scan treats it as containing no fonts.
func NewCatalog(manualDir, downloadedDir string) *Catalog {
	return &Catalog{
		manualDir:     manualDir,
		downloadedDir: downloadedDir,
		byName:        map[string]Entry{},
	}
}

// Scan re-reads both directories and rebuilds the name to path mapping.
// Files that cannot be parsed as fonts are named by their basename stem
// rather than skipped, so a damaged name table does not hide a usable file.
func (c *Catalog) Scan() error {
	c.entries = c.entries[:0]
	c.byName = map[string]Entry{}

	for _, dir := range []string{c.manualDir, c.downloadedDir} {
		if dir == "" {
			continue
		}
		files, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, f := range files {
			if f.IsDir() || !fontExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			path := filepath.Join(dir, f.Name())
			name := familyName(path)
			key := foldName(name)
			if _, ok := c.byName[key]; ok {
				continue // earlier directory has priority
			}
			entry := Entry{Name: name, Path: path}
			c.byName[key] = entry
			c.entries = append(c.entries, entry)
		}
	}
	pdfrebuilder.Logger().Debug("font catalog scanned",
		"manualDir", c.manualDir, "downloadedDir", c.downloadedDir, "entries", len(c.entries))
	return nil
}

// Lookup returns the entry for a family name, matched case-insensitively.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[foldName(name)]
	return e, ok
}

// Entries returns all candidates in scan order. The returned slice is
// shared; callers must not modify it.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// familyName extracts the family name from a font file's name table,
// falling back to the basename stem when the file cannot be parsed.
func familyName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(path)
	if err != nil {
		return stem
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return stem
	}
	if fam := face.Describe().Family; fam != "" {
		return fam
	}
	return stem
}

// foldName normalizes a family name for lookup.
func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
