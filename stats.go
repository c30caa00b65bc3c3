package pdfrebuilder

import "sort"

// DocumentStats summarizes a document model. It is computed by a read-only
// traversal and never mutates the document.
type DocumentStats struct {
	Pages          int
	Layers         int
	HiddenLayers   int
	ElementsByType map[string]int
	FontNames      []string // distinct, sorted
	TextRunes      int
}

// Elements returns the total element count across all types.
func (s DocumentStats) Elements() int {
	n := 0
	for _, c := range s.ElementsByType {
		n += c
	}
	return n
}

// Stats traverses the document and collects summary counts. Invisible
// layers are counted but their elements still contribute, since statistics
// describe the document description rather than the rendered output.
func Stats(doc *DocumentModel) DocumentStats {
	stats := DocumentStats{
		ElementsByType: map[string]int{},
	}
	if doc == nil {
		return stats
	}
	fonts := map[string]struct{}{}
	stats.Pages = len(doc.Pages)
	for _, page := range doc.Pages {
		stats.Layers += len(page.Layers)
		for _, layer := range page.Layers {
			if !layer.Visible {
				stats.HiddenLayers++
			}
			for _, el := range layer.Elements {
				stats.ElementsByType[el.Type]++
				if el.Type == ElementText {
					stats.TextRunes += len([]rune(el.Text))
					if el.FontName != "" {
						fonts[el.FontName] = struct{}{}
					}
				}
			}
		}
	}
	for name := range fonts {
		stats.FontNames = append(stats.FontNames, name)
	}
	sort.Strings(stats.FontNames)
	return stats
}
