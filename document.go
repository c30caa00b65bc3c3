package pdfrebuilder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Element type constants.
const (
	ElementText  = "text"
	ElementRect  = "rect"
	ElementLine  = "line"
	ElementImage = "image"
)

// DocumentModel is the structured intermediate description of a document.
// It is a read-only input to renderers and the statistics utility.
type DocumentModel struct {
	Version  string         `json:"version"`
	Engine   string         `json:"engine"`
	Metadata map[string]any `json:"metadata"`
	Pages    []Page         `json:"pages"`
}

// Page is a single page of the document. Size is width and height in points.
type Page struct {
	Size   [2]float64 `json:"size"`
	Layers []Layer    `json:"layers"`
}

// Layer groups elements with a shared visibility flag. Layers are declared
// top-to-bottom: the last-declared layer is treated as the bottom of the
// stack and drawn first.
type Layer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Visible  bool      `json:"visible"`
	Elements []Element `json:"elements"`
}

// Element is a single drawable item. Type determines which fields are
// meaningful.
type Element struct {
	Type        string
	ID          string
	Text        string
	FontName    string
	FontSize    float64
	BBox        [4]float64 // x0, y0, x1, y1 in page points
	Color       *Color
	FillColor   *Color
	StrokeWidth float64
	ImagePath   string
}

// rawElement mirrors Element on the wire; color fields stay loosely typed
// so ParseColor can apply its normalization heuristic.
type rawElement struct {
	Type        string     `json:"type"`
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	FontName    string     `json:"font"`
	FontSize    float64    `json:"font_size"`
	BBox        [4]float64 `json:"bbox"`
	Color       any        `json:"color"`
	FillColor   any        `json:"fill_color"`
	StrokeWidth float64    `json:"stroke_width"`
	ImagePath   string     `json:"image"`
}

// UnmarshalJSON decodes an element, converting color values through
// ParseColor.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw rawElement
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Element{
		Type:        raw.Type,
		ID:          raw.ID,
		Text:        raw.Text,
		FontName:    raw.FontName,
		FontSize:    raw.FontSize,
		BBox:        raw.BBox,
		Color:       ParseColor(raw.Color),
		FillColor:   ParseColor(raw.FillColor),
		StrokeWidth: raw.StrokeWidth,
		ImagePath:   raw.ImagePath,
	}
	return nil
}

// MarshalJSON encodes an element in the wire form. Colors are written as
// normalized 3-element sequences.
func (e Element) MarshalJSON() ([]byte, error) {
	raw := rawElement{
		Type:        e.Type,
		ID:          e.ID,
		Text:        e.Text,
		FontName:    e.FontName,
		FontSize:    e.FontSize,
		BBox:        e.BBox,
		StrokeWidth: e.StrokeWidth,
		ImagePath:   e.ImagePath,
	}
	if e.Color != nil {
		raw.Color = []float64{e.Color.R, e.Color.G, e.Color.B}
	}
	if e.FillColor != nil {
		raw.FillColor = []float64{e.FillColor.R, e.FillColor.G, e.FillColor.B}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a layer. Visibility defaults to true when the field
// is absent.
func (l *Layer) UnmarshalJSON(data []byte) error {
	type rawLayer struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		Visible  *bool     `json:"visible"`
		Elements []Element `json:"elements"`
	}
	var raw rawLayer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	visible := true
	if raw.Visible != nil {
		visible = *raw.Visible
	}
	*l = Layer{ID: raw.ID, Name: raw.Name, Visible: visible, Elements: raw.Elements}
	return nil
}

// ParseDocument decodes a document model from its JSON intermediate form.
func ParseDocument(r io.Reader) (*DocumentModel, error) {
	var doc DocumentModel
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("pdfrebuilder: decode document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and decodes a document model from a JSON file.
func LoadDocument(path string) (*DocumentModel, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("pdfrebuilder: open document: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseDocument(f)
}

// SaveDocument writes the document model back out as indented JSON.
func SaveDocument(doc *DocumentModel, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("pdfrebuilder: encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pdfrebuilder: write document: %w", err)
	}
	return nil
}
