package bar

import (
	"errors"
	"image"
	"math"
)

var ErrInvalidFraction = errors.New("fraction must be between 0 and 1")

// Wedge is a 45 degree triangle, used to separate groups of widgets.
type Wedge struct {
	onlyWithFocus bool
	start         bool
	fg            Color
	bg            Color
}

// NewWedgeStart points into the widgets that follow it.
func NewWedgeStart(fg, bg Color) *Wedge {
	return &Wedge{start: true, fg: fg, bg: bg}
}

// NewWedgeEnd closes off the widgets before it.
func NewWedgeEnd(fg, bg Color) *Wedge {
	return &Wedge{start: false, fg: fg, bg: bg}
}

// OnlyWithFocus hides the triangle on screens without focus.
func (wg *Wedge) OnlyWithFocus() *Wedge {
	wg.onlyWithFocus = true
	return wg
}

func (wg *Wedge) Draw(ctx *Context, _ int, screenHasFocus bool, w, h int) error {
	ctx.FillRect(image.Rect(0, 0, w, h), wg.bg)
	if wg.onlyWithFocus && !screenHasFocus {
		return nil
	}

	p := h
	if wg.start {
		p = 0
	}
	ctx.FillPolygon([]image.Point{image.Pt(p, p), image.Pt(h, 0), image.Pt(0, h)}, wg.fg)

	return nil
}

func (wg *Wedge) CurrentExtent(_ *Context, h int) (int, int, error) {
	return h, h, nil
}

func (wg *Wedge) IsGreedy() bool {
	return false
}

func (wg *Wedge) RequireDraw() bool {
	return false
}

// Spacer reserves a fraction of the first screen's width, e.g. for a tray.
type Spacer struct {
	fraction float64
	w        int
}

func NewSpacer(fraction float64) (*Spacer, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, ErrInvalidFraction
	}
	return &Spacer{fraction: fraction}, nil
}

func (s *Spacer) Draw(ctx *Context, _ int, _ bool, w, h int) error {
	ctx.FillBg(image.Rect(0, 0, w, h))
	return nil
}

func (s *Spacer) CurrentExtent(_ *Context, h int) (int, int, error) {
	return s.w, h, nil
}

func (s *Spacer) IsGreedy() bool {
	return false
}

func (s *Spacer) RequireDraw() bool {
	return false
}

func (s *Spacer) OnStartup(snap Snapshot) error {
	if len(snap.State.Screens) == 0 {
		s.w = 0
		return nil
	}
	s.w = int(math.Round(float64(snap.State.Screens[0].Geometry.Dx()) * s.fraction))
	return nil
}
