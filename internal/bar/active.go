package bar

import (
	"image"

	"github.com/ItsNotGoodName/x-dotwm/internal/logging"
)

// ActiveWindowName shows the title of the focused client on the focused screen.
type ActiveWindowName struct {
	*Text
	maxChars int
}

func NewActiveWindowName(maxChars int, style TextStyle, greedy, rightJustified bool) *ActiveWindowName {
	return &ActiveWindowName{
		Text:     NewText("", style, greedy, rightJustified),
		maxChars: maxChars,
	}
}

func (a *ActiveWindowName) Draw(ctx *Context, screen int, screenHasFocus bool, w, h int) error {
	if !screenHasFocus {
		ctx.FillBg(image.Rect(0, 0, w, h))
		return nil
	}
	return a.Text.Draw(ctx, screen, screenHasFocus, w, h)
}

func (a *ActiveWindowName) OnRefresh(snap Snapshot) error {
	if snap.State.Focused == 0 {
		a.Set("")
		return nil
	}

	title, err := snap.Conn.WindowTitle(snap.State.Focused)
	title, _ = logging.LogErr(title, err, "Failed to get active window title")

	a.Set(Truncate(title, a.maxChars))
	return nil
}

// Truncate shortens s to maxChars runes followed by "...". Zero means no limit.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars]) + "..."
}
