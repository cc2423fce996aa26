package bar

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// TextStyle is the colors and horizontal padding of a piece of text.
type TextStyle struct {
	FG           Color
	BG           Color
	PaddingLeft  int
	PaddingRight int
}

// Context draws into the region of a frame owned by one widget. All
// coordinates are relative to the top left of that region.
type Context struct {
	frame  *image.RGBA
	bounds image.Rectangle
	bg     Color
	face   font.Face
}

func NewContext(frame *image.RGBA, bg Color, face font.Face) *Context {
	return &Context{
		frame:  frame,
		bounds: frame.Bounds(),
		bg:     bg,
		face:   face,
	}
}

// Sub returns a context for the w pixels wide region starting at x.
func (c *Context) Sub(x, w int) *Context {
	origin := c.bounds.Min.Add(image.Pt(x, 0))
	return &Context{
		frame:  c.frame,
		bounds: image.Rectangle{Min: origin, Max: image.Pt(origin.X+w, c.bounds.Max.Y)}.Intersect(c.frame.Bounds()),
		bg:     c.bg,
		face:   c.face,
	}
}

// Size of the drawable region.
func (c *Context) Size() (int, int) {
	return c.bounds.Dx(), c.bounds.Dy()
}

func (c *Context) dst() *image.RGBA {
	return c.frame.SubImage(c.bounds).(*image.RGBA)
}

func (c *Context) FillRect(r image.Rectangle, col Color) {
	r = r.Add(c.bounds.Min).Intersect(c.bounds)
	if r.Empty() {
		return
	}
	draw.Draw(c.frame, r, image.NewUniform(col.RGBA()), image.Point{}, draw.Src)
}

// FillBg fills r with the bar background.
func (c *Context) FillBg(r image.Rectangle) {
	c.FillRect(r, c.bg)
}

// FillPolygon fills the closed polygon through points.
func (c *Context) FillPolygon(points []image.Point, col Color) {
	w, h := c.Size()
	if len(points) < 3 || w <= 0 || h <= 0 {
		return
	}

	z := vector.NewRasterizer(w, h)
	z.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()

	z.Draw(c.dst(), c.bounds, image.NewUniform(col.RGBA()), image.Point{})
}

// TextExtent measures s without padding.
func (c *Context) TextExtent(s string) (int, int) {
	metrics := c.face.Metrics()
	return font.MeasureString(c.face, s).Ceil(), (metrics.Ascent + metrics.Descent).Ceil()
}

// DrawText draws s at x, vertically centered in h, with the style's padding and
// background. It returns the width used.
func (c *Context) DrawText(s string, x, h int, style TextStyle) int {
	tw, th := c.TextExtent(s)
	w := style.PaddingLeft + tw + style.PaddingRight

	c.FillRect(image.Rect(x, 0, x+w, h), style.BG)

	baseline := (h-th)/2 + c.face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  c.dst(),
		Src:  image.NewUniform(style.FG.RGBA()),
		Face: c.face,
		Dot:  fixed.P(c.bounds.Min.X+x+style.PaddingLeft, c.bounds.Min.Y+baseline),
	}
	d.DrawString(s)

	return w
}

// FaceLoader returns a face for the font file at path at the given point size.
type FaceLoader func(path string, points float64) (font.Face, error)

// Fonts loads faces from font files, parsing each file once.
type Fonts struct {
	parsed map[string]*opentype.Font
}

func NewFonts() *Fonts {
	return &Fonts{parsed: make(map[string]*opentype.Font)}
}

// Face falls back to basicfont when path is empty.
func (f *Fonts) Face(path string, points float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}

	otf, ok := f.parsed[path]
	if !ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}

		otf, err = opentype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		f.parsed[path] = otf
	}

	return opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    points,
		DPI:     96,
		Hinting: font.HintingFull,
	})
}
