// Package bus is a typed, synchronous publish/subscribe hub.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type handler func(ctx context.Context, event any)

// Bus delivers events to subscribers in subscription order on the publishing
// goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]handler
}

func New() *Bus {
	return &Bus{subs: make(map[string][]handler)}
}

func topic[T any]() string {
	return fmt.Sprintf("%T", *new(T))
}

// Subscribe registers fn for events of type T. Errors returned by fn are logged
// under name.
func Subscribe[T any](b *Bus, name string, fn func(ctx context.Context, event T) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := topic[T]()
	b.subs[t] = append(b.subs[t], func(ctx context.Context, event any) {
		if err := fn(ctx, event.(T)); err != nil {
			slog.Error("Failed to handle event", "package", "bus", "name", name, "error", err)
		}
	})
}

func Publish[T any](ctx context.Context, b *Bus, event T) {
	b.mu.RLock()
	subs := b.subs[topic[T]()]
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx, event)
	}
}
