package backend

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/mmartin-sub/pdfrebuilder"
	"github.com/mmartin-sub/pdfrebuilder/fonts"
)

// BackendCanvas is the name of the tdewolff/canvas based backend.
const BackendCanvas = "canvas"

// OptionBackground is the RenderTarget.Options key for a page background
// color. The value takes any form ParseColor accepts; absent or nil means
// no background fill.
const OptionBackground = "background"

// mmPerPt converts document points to canvas millimeters.
const mmPerPt = 25.4 / 72.0

// canvasFormats are the output formats the canvas backend produces.
var canvasFormats = map[string]bool{
	"png": true,
	"pdf": true,
}

// init registers the canvas backend on package import.
func init() {
	Register(BackendCanvas, func() Renderer {
		return NewCanvasRenderer()
	})
}

// CanvasRenderer renders document models through github.com/tdewolff/canvas.
// PNG output rasterizes only the first page; PDF output writes every page.
type CanvasRenderer struct {
	families map[string]*canvas.FontFamily
}

// NewCanvasRenderer creates a canvas-based renderer.
func NewCanvasRenderer() *CanvasRenderer {
	return &CanvasRenderer{families: map[string]*canvas.FontFamily{}}
}

// Name returns the backend identifier.
func (r *CanvasRenderer) Name() string { return BackendCanvas }

// CanRender reports whether the document and format are renderable by this
// backend. Pure query, no side effects.
func (r *CanvasRenderer) CanRender(doc *pdfrebuilder.DocumentModel, outputFormat string) bool {
	return doc != nil && len(doc.Pages) > 0 && canvasFormats[outputFormat]
}

// Render produces the target output file.
func (r *CanvasRenderer) Render(ctx context.Context, target *RenderTarget) error {
	doc := target.Document
	if doc == nil || len(doc.Pages) == 0 {
		return renderErrorf(ErrEmptyDocument, BackendCanvas, "document has no pages")
	}
	if !canvasFormats[target.OutputFormat] {
		return renderErrorf(ErrUnsupportedFormat, BackendCanvas, "%q", target.OutputFormat)
	}

	dpi := target.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	switch target.OutputFormat {
	case "pdf":
		return r.renderPDF(ctx, target)
	default:
		return r.renderRaster(ctx, target, dpi)
	}
}

// renderRaster rasterizes the first page of the document. Multi-page
// documents lose their remaining pages, matching raster-style semantics.
func (r *CanvasRenderer) renderRaster(ctx context.Context, target *RenderTarget, dpi int) error {
	doc := target.Document
	if len(doc.Pages) > 1 {
		pdfrebuilder.Logger().Warn("raster output renders only the first page",
			"pages", len(doc.Pages))
	}
	c, err := r.renderPage(ctx, target, doc.Pages[0])
	if err != nil {
		return err
	}
	if err := renderers.Write(target.OutputPath, c, canvas.DPI(float64(dpi))); err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"write %s: %v", target.OutputPath, err)
	}
	return nil
}

// renderPDF writes every page and validates the finished file.
func (r *CanvasRenderer) renderPDF(ctx context.Context, target *RenderTarget) error {
	doc := target.Document
	f, err := os.Create(target.OutputPath)
	if err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"create %s: %v", target.OutputPath, err)
	}
	defer func() { _ = f.Close() }()

	first := doc.Pages[0]
	w := pdf.New(f, first.Size[0]*mmPerPt, first.Size[1]*mmPerPt, nil)
	for i, page := range doc.Pages {
		if i > 0 {
			w.NewPage(page.Size[0]*mmPerPt, page.Size[1]*mmPerPt)
		}
		c, err := r.renderPage(ctx, target, page)
		if err != nil {
			return err
		}
		c.RenderTo(w)
	}
	if err := w.Close(); err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"finish %s: %v", target.OutputPath, err)
	}
	if err := f.Close(); err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"close %s: %v", target.OutputPath, err)
	}
	if err := api.ValidateFile(target.OutputPath, nil); err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"pdf validation of %s: %v", target.OutputPath, err)
	}
	return nil
}

// renderPage draws a single page. Layers are traversed in reverse
// declaration order so the last-declared layer forms the bottom of the
// stack; invisible layers and their elements are skipped entirely.
func (r *CanvasRenderer) renderPage(ctx context.Context, target *RenderTarget, page pdfrebuilder.Page) (*canvas.Canvas, error) {
	c := canvas.New(page.Size[0]*mmPerPt, page.Size[1]*mmPerPt)
	cc := canvas.NewContext(c)
	cc.SetCoordSystem(canvas.CartesianIV) // top-left origin, as in the document model

	if bg := pdfrebuilder.ParseColor(target.Options[OptionBackground]); bg != nil {
		cc.SetFillColor(bg.Color())
		cc.SetStrokeColor(color.RGBA{})
		cc.DrawPath(0, 0, canvas.Rectangle(c.W, c.H))
	}

	for i := len(page.Layers) - 1; i >= 0; i-- {
		layer := page.Layers[i]
		if !layer.Visible {
			pdfrebuilder.Logger().Debug("skipping invisible layer", "layer", layer.Name)
			continue
		}
		for _, el := range layer.Elements {
			if err := r.drawElement(ctx, cc, target, el); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (r *CanvasRenderer) drawElement(ctx context.Context, cc *canvas.Context, target *RenderTarget, el pdfrebuilder.Element) error {
	switch el.Type {
	case pdfrebuilder.ElementText:
		return r.drawText(ctx, cc, target, el)
	case pdfrebuilder.ElementRect:
		drawRect(cc, el)
	case pdfrebuilder.ElementLine:
		drawLine(cc, el)
	case pdfrebuilder.ElementImage:
		return drawImage(cc, el)
	default:
		pdfrebuilder.Logger().Warn("skipping element of unknown type",
			"type", el.Type, "id", el.ID)
	}
	return nil
}

func (r *CanvasRenderer) drawText(ctx context.Context, cc *canvas.Context, target *RenderTarget, el pdfrebuilder.Element) error {
	resolved := fonts.ResolvedFont{RegisteredName: fonts.BuiltinFontName}
	if target.Resolver != nil && el.FontName != "" {
		resolved = target.Resolver.Resolve(ctx, fonts.FontRequest{
			Name:       el.FontName,
			SampleText: el.Text,
		})
	}

	col := color.Color(canvas.Black)
	if el.Color != nil {
		col = el.Color.Color()
	}
	size := el.FontSize
	if size <= 0 {
		size = 12
	}
	face, err := r.fontFace(resolved, size, col)
	if err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"load font %s: %v", resolved.RegisteredName, err)
	}

	line := canvas.NewTextLine(face, el.Text, canvas.Left)
	x := el.BBox[0] * mmPerPt
	baseline := el.BBox[1]*mmPerPt + face.Metrics().Ascent
	cc.DrawText(x, baseline, line)
	return nil
}

// fontFace loads (and caches) the font family behind a resolution and
// produces a sized face. An empty FilePath selects the built-in base font.
func (r *CanvasRenderer) fontFace(resolved fonts.ResolvedFont, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	fam, ok := r.families[resolved.RegisteredName]
	if !ok {
		data := fonts.BuiltinFontData()
		if resolved.FilePath != "" {
			var err error
			data, err = os.ReadFile(resolved.FilePath)
			if err != nil {
				return nil, err
			}
		}
		fam = canvas.NewFontFamily(resolved.RegisteredName)
		if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("parse %s: %w", resolved.RegisteredName, err)
		}
		r.families[resolved.RegisteredName] = fam
	}
	return fam.Face(sizePt, col, canvas.FontRegular, canvas.FontNormal), nil
}

func drawRect(cc *canvas.Context, el pdfrebuilder.Element) {
	if el.FillColor != nil {
		cc.SetFillColor(el.FillColor.Color())
	} else {
		cc.SetFillColor(color.RGBA{})
	}
	if el.Color != nil {
		cc.SetStrokeColor(el.Color.Color())
	} else {
		cc.SetStrokeColor(canvas.Black)
	}
	cc.SetStrokeWidth(strokeWidth(el))
	w := (el.BBox[2] - el.BBox[0]) * mmPerPt
	h := (el.BBox[3] - el.BBox[1]) * mmPerPt
	cc.DrawPath(el.BBox[0]*mmPerPt, el.BBox[1]*mmPerPt, canvas.Rectangle(w, h))
}

func drawLine(cc *canvas.Context, el pdfrebuilder.Element) {
	if el.Color != nil {
		cc.SetStrokeColor(el.Color.Color())
	} else {
		cc.SetStrokeColor(canvas.Black)
	}
	cc.SetStrokeWidth(strokeWidth(el))
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo((el.BBox[2]-el.BBox[0])*mmPerPt, (el.BBox[3]-el.BBox[1])*mmPerPt)
	cc.DrawPath(el.BBox[0]*mmPerPt, el.BBox[1]*mmPerPt, p)
}

func drawImage(cc *canvas.Context, el pdfrebuilder.Element) error {
	if el.ImagePath == "" {
		return nil
	}
	f, err := os.Open(filepath.Clean(el.ImagePath))
	if err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"open image %s: %v", el.ImagePath, err)
	}
	img, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return renderErrorf(ErrOutputVerificationFailed, BackendCanvas,
			"decode image %s: %v", el.ImagePath, err)
	}
	wMM := (el.BBox[2] - el.BBox[0]) * mmPerPt
	if wMM <= 0 {
		wMM = float64(img.Bounds().Dx()) * mmPerPt
	}
	dpmm := float64(img.Bounds().Dx()) / wMM
	if dpmm <= 0 {
		dpmm = 1
	}
	cc.DrawImage(el.BBox[0]*mmPerPt, el.BBox[1]*mmPerPt, img, canvas.DPMM(dpmm))
	return nil
}

func strokeWidth(el pdfrebuilder.Element) float64 {
	if el.StrokeWidth > 0 {
		return el.StrokeWidth * mmPerPt
	}
	return 0.2
}
