// Package bar renders a status bar for each screen from a row of widgets.
package bar

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/font"
)

// PerScreen is the bar layout of one screen.
type PerScreen struct {
	PointSize float64
	Height    int
	Widgets   []Widget
}

// Surface is where the frame of one screen ends up.
type Surface interface {
	Width() int
	Put(frame *image.RGBA) error
}

type screenBar struct {
	per     PerScreen
	face    font.Face
	surface Surface
	frame   *image.RGBA
}

type StatusBar struct {
	bg            Color
	perScreen     []PerScreen
	fontPath      string
	loadFace      FaceLoader
	screens       []*screenBar
	focusedScreen int
}

// New creates a bar. Screen i uses perScreen[min(i, len(perScreen)-1)].
func New(bg Color, fontPath string, perScreen []PerScreen, loadFace FaceLoader) (*StatusBar, error) {
	if len(perScreen) == 0 {
		return nil, errors.New("no bar layouts")
	}
	if loadFace == nil {
		loadFace = NewFonts().Face
	}

	return &StatusBar{
		bg:        bg,
		perScreen: perScreen,
		fontPath:  fontPath,
		loadFace:  loadFace,
	}, nil
}

func (b *StatusBar) ForScreen(i int) PerScreen {
	return b.perScreen[min(max(i, 0), len(b.perScreen)-1)]
}

// Attach binds one surface to each screen, in screen order.
func (b *StatusBar) Attach(surfaces []Surface) error {
	screens := make([]*screenBar, 0, len(surfaces))
	for i, surface := range surfaces {
		per := b.ForScreen(i)

		face, err := b.loadFace(b.fontPath, per.PointSize)
		if err != nil {
			return fmt.Errorf("screen %d: %w", i, err)
		}

		screens = append(screens, &screenBar{
			per:     per,
			face:    face,
			surface: surface,
			frame:   image.NewRGBA(image.Rect(0, 0, surface.Width(), per.Height)),
		})
	}
	b.screens = screens

	return nil
}

func (b *StatusBar) widgets() []Widget {
	var widgets []Widget
	seen := make(map[Widget]bool)
	for _, per := range b.perScreen {
		for _, w := range per.Widgets {
			if !seen[w] {
				seen[w] = true
				widgets = append(widgets, w)
			}
		}
	}
	return widgets
}

// Startup runs the startup hooks and starts the background widgets, then draws
// every screen.
func (b *StatusBar) Startup(ctx context.Context, snap Snapshot) error {
	b.focusedScreen = snap.State.FocusedScreen

	for _, w := range b.widgets() {
		if hook, ok := w.(StartupHook); ok {
			if err := hook.OnStartup(snap); err != nil {
				return err
			}
		}
		if runner, ok := w.(Runner); ok {
			go runner.Run(ctx)
		}
	}

	return b.Redraw(true)
}

// Refresh runs the refresh hooks then redraws the screens that need it.
func (b *StatusBar) Refresh(snap Snapshot) error {
	force := snap.State.FocusedScreen != b.focusedScreen
	b.focusedScreen = snap.State.FocusedScreen

	for _, w := range b.widgets() {
		if hook, ok := w.(RefreshHook); ok {
			if err := hook.OnRefresh(snap); err != nil {
				slog.Warn("Widget refresh failed", "package", "bar", "widget", fmt.Sprintf("%T", w), "error", err)
			}
		}
	}

	return b.Redraw(force)
}

// Redraw draws every screen that has a widget requiring a redraw, or every
// screen when force is set.
func (b *StatusBar) Redraw(force bool) error {
	// Widgets may be shared between screens, so decide before drawing clears
	// their flags.
	dirty := make([]bool, len(b.screens))
	for i, s := range b.screens {
		dirty[i] = force || requireDraw(s.per.Widgets)
	}

	var errs []error
	for i, s := range b.screens {
		if !dirty[i] {
			continue
		}
		if err := b.drawScreen(i, s); err != nil {
			errs = append(errs, fmt.Errorf("screen %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func requireDraw(widgets []Widget) bool {
	for _, w := range widgets {
		if w.RequireDraw() {
			return true
		}
	}
	return false
}

func (b *StatusBar) drawScreen(i int, s *screenBar) error {
	ctx := NewContext(s.frame, b.bg, s.face)
	width, h := ctx.Size()
	ctx.FillBg(image.Rect(0, 0, width, h))

	extents := make([]int, len(s.per.Widgets))
	greedy := make([]bool, len(s.per.Widgets))
	for j, w := range s.per.Widgets {
		ew, _, err := w.CurrentExtent(ctx, h)
		if err != nil {
			return err
		}
		extents[j] = ew
		greedy[j] = w.IsGreedy()
	}

	x := 0
	for j, w := range Layout(extents, greedy, width) {
		if err := s.per.Widgets[j].Draw(ctx.Sub(x, w), i, i == b.focusedScreen, w, h); err != nil {
			return err
		}
		x += w
	}

	return s.surface.Put(s.frame)
}

// Layout returns the width of each widget. Greedy widgets split the width the
// others leave evenly.
func Layout(extents []int, greedy []bool, width int) []int {
	fixed, nGreedy := 0, 0
	for i, e := range extents {
		if greedy[i] {
			nGreedy++
		} else {
			fixed += e
		}
	}

	share := 0
	if nGreedy > 0 {
		share = max(width-fixed, 0) / nGreedy
	}

	widths := make([]int, len(extents))
	for i, e := range extents {
		if greedy[i] {
			widths[i] = share
		} else {
			widths[i] = e
		}
	}
	return widths
}
