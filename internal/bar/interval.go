package bar

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TextSource produces the text of an IntervalText.
type TextSource func(ctx context.Context) (string, error)

// IntervalText refreshes its text from a source on a fixed interval.
type IntervalText struct {
	mu       sync.Mutex
	text     *Text
	name     string
	source   TextSource
	interval time.Duration
}

func NewIntervalText(name string, style TextStyle, source TextSource, interval time.Duration) *IntervalText {
	return &IntervalText{
		text:     NewText("", style, false, true),
		name:     name,
		source:   source,
		interval: interval,
	}
}

func (t *IntervalText) Run(ctx context.Context) {
	t.update(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.update(ctx)
		}
	}
}

func (t *IntervalText) update(ctx context.Context) {
	text, err := t.source(ctx)
	if err != nil {
		slog.Debug("Failed to update interval text", "package", "bar", "name", t.name, "error", err)
		text = ""
	}

	t.mu.Lock()
	t.text.Set(text)
	t.mu.Unlock()
}

func (t *IntervalText) Get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text.Get()
}

func (t *IntervalText) Draw(ctx *Context, screen int, screenHasFocus bool, w, h int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text.Draw(ctx, screen, screenHasFocus, w, h)
}

func (t *IntervalText) CurrentExtent(ctx *Context, h int) (int, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text.CurrentExtent(ctx, h)
}

func (t *IntervalText) IsGreedy() bool {
	return false
}

func (t *IntervalText) RequireDraw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text.RequireDraw()
}
