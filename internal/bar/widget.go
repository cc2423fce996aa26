package bar

import (
	"context"
	"image"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
)

// Widget is one element of the bar.
type Widget interface {
	// Draw renders into the w by h region of ctx.
	Draw(ctx *Context, screen int, screenHasFocus bool, w, h int) error
	// CurrentExtent is the size the widget wants for a bar of height h.
	CurrentExtent(ctx *Context, h int) (int, int, error)
	// IsGreedy widgets share whatever width the other widgets leave.
	IsGreedy() bool
	// RequireDraw reports whether the widget changed since it was last drawn.
	RequireDraw() bool
}

// Snapshot is what widget hooks see of the host.
type Snapshot struct {
	State *host.State
	Conn  host.Conn
	Procs workspaces.ProcessResolver
}

type StartupHook interface {
	OnStartup(snap Snapshot) error
}

type RefreshHook interface {
	OnRefresh(snap Snapshot) error
}

// Runner widgets update themselves in the background until ctx is done.
type Runner interface {
	Run(ctx context.Context)
}

// Text is a single piece of styled text.
type Text struct {
	text           string
	style          TextStyle
	greedy         bool
	rightJustified bool
	requireDraw    bool
}

func NewText(text string, style TextStyle, greedy, rightJustified bool) *Text {
	return &Text{
		text:           text,
		style:          style,
		greedy:         greedy,
		rightJustified: rightJustified,
		requireDraw:    true,
	}
}

func (t *Text) Get() string {
	return t.text
}

func (t *Text) Set(text string) {
	if text != t.text {
		t.text = text
		t.requireDraw = true
	}
}

func (t *Text) Draw(ctx *Context, _ int, _ bool, w, h int) error {
	ctx.FillRect(image.Rect(0, 0, w, h), t.style.BG)

	x := 0
	if t.rightJustified {
		ew, _, _ := t.CurrentExtent(ctx, h)
		x = max(w-ew, 0)
	}
	ctx.DrawText(t.text, x, h, t.style)

	t.requireDraw = false
	return nil
}

func (t *Text) CurrentExtent(ctx *Context, h int) (int, int, error) {
	if t.text == "" {
		return 0, h, nil
	}
	w, _ := ctx.TextExtent(t.text)
	return t.style.PaddingLeft + w + t.style.PaddingRight, h, nil
}

func (t *Text) IsGreedy() bool {
	return t.greedy
}

func (t *Text) RequireDraw() bool {
	return t.requireDraw
}
