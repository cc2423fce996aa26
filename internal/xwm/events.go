package xwm

import (
	"context"
	"log/slog"

	"github.com/jezek/xgb"
)

// ReceiveEvents forwards X events to eventC until the connection closes or ctx
// is done. eventC is closed on return.
func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- xgb.Event) {
	defer close(eventC)
	slog := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}

		if err != nil {
			// Errors of unchecked requests are not fatal
			slog.Warn("X request failed", "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}
