package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/ItsNotGoodName/x-dotwm/internal/actions"
	"github.com/ItsNotGoodName/x-dotwm/internal/bar"
	"github.com/ItsNotGoodName/x-dotwm/internal/bus"
	"github.com/ItsNotGoodName/x-dotwm/internal/config"
	"github.com/ItsNotGoodName/x-dotwm/internal/keys"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func staticSource(text string) bar.TextSource {
	return func(ctx context.Context) (string, error) { return text, nil }
}

var testSources = Sources{
	Wifi:    staticSource("wifi: home"),
	Battery: staticSource("bat: 80%"),
	Volume:  staticSource("vol: 40%"),
	Clock:   staticSource("2024-01-02 15:04"),
}

func basicFace(string, float64) (font.Face, error) {
	return basicfont.Face7x13, nil
}

func TestTags(t *testing.T) {
	got := Tags(3)
	if !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Errorf("Tags(3) = %v", got)
	}
	if len(Tags(29)) != 29 || Tags(29)[28] != "29" {
		t.Errorf("Tags(29) = %v", Tags(29))
	}
}

func TestBatteryName(t *testing.T) {
	dir := t.TempDir()

	if got := BatteryName("BAT7", dir); got != "BAT7" {
		t.Errorf("configured: got %q", got)
	}
	if got := BatteryName("", dir); got != bar.DefaultBattery {
		t.Errorf("empty dir: got %q, want %q", got, bar.DefaultBattery)
	}
}

func TestNewStatusBar(t *testing.T) {
	sb, err := NewStatusBar(config.DefaultConfig().Bar, testSources, basicFace)
	if err != nil {
		t.Fatal(err)
	}

	primary := sb.ForScreen(0)
	external := sb.ForScreen(1)

	if primary.PointSize != 12 || primary.Height != 24 {
		t.Errorf("primary = %v/%v, want 12/24", primary.PointSize, primary.Height)
	}
	if external.PointSize != 8 || external.Height != 18 {
		t.Errorf("external = %v/%v, want 8/18", external.PointSize, external.Height)
	}
	if len(primary.Widgets) != 10 || len(external.Widgets) != 9 {
		t.Fatalf("widgets = %d/%d, want 10/9", len(primary.Widgets), len(external.Widgets))
	}
	if _, ok := primary.Widgets[9].(*bar.Spacer); !ok {
		t.Errorf("last primary widget = %T, want *bar.Spacer", primary.Widgets[9])
	}
	if sb.ForScreen(5).Height != 18 {
		t.Error("screens past the second should use the external layout")
	}

	greedy := 0
	for i, w := range external.Widgets {
		if w == primary.Widgets[i] {
			t.Errorf("widget %d shared between screens", i)
		}
		if w.IsGreedy() {
			greedy++
		}
	}
	if greedy != 1 {
		t.Errorf("greedy widgets = %d, want 1", greedy)
	}
}

func TestNewStatusBar_Invalid(t *testing.T) {
	cfg := config.DefaultConfig().Bar
	cfg.Foreground = "white"
	if _, err := NewStatusBar(cfg, testSources, basicFace); err == nil {
		t.Error("invalid color: want error")
	}

	cfg = config.DefaultConfig().Bar
	cfg.SpacerFraction = 2
	if _, err := NewStatusBar(cfg, testSources, basicFace); !errors.Is(err, bar.ErrInvalidFraction) {
		t.Errorf("invalid spacer: err = %v", err)
	}
}

type fakeState struct {
	change    bool
	refreshes int
	err       error
}

func (f *fakeState) Refresh() error {
	f.refreshes++
	return f.err
}

func (f *fakeState) IsStateChange(xproto.PropertyNotifyEvent) bool {
	return f.change
}

type fakeBar struct {
	forced int
}

func (f *fakeBar) Redraw(force bool) error {
	if force {
		f.forced++
	}
	return nil
}

func newTestHandler(t *testing.T, chord string, run func(ctx context.Context, action keys.Action) error) (*handler, *fakeState, *fakeBar) {
	t.Helper()

	table, err := keys.Build(config.DefaultConfig().KeyOptions())
	if err != nil {
		t.Fatal(err)
	}

	state := &fakeState{change: true}
	sb := &fakeBar{}
	return &handler{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state: state,
		chord: func(xproto.KeyPressEvent) (string, bool) {
			return chord, chord != ""
		},
		table:        table,
		run:          run,
		bar:          sb,
		bus:          bus.New(),
		snapshot:     func() bar.Snapshot { return bar.Snapshot{} },
		isClientList: func(xproto.PropertyNotifyEvent) bool { return true },
	}, state, sb
}

func TestHandler_KeyPress(t *testing.T) {
	var got []keys.Action
	h, _, _ := newTestHandler(t, "M-3", func(ctx context.Context, action keys.Action) error {
		got = append(got, action)
		return nil
	})

	if err := h.handle(context.Background(), xproto.KeyPressEvent{}); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 || got[0] != (keys.FocusTag{Tag: "3"}) {
		t.Errorf("ran %v, want FocusTag 3", got)
	}
}

func TestHandler_KeyPressUnbound(t *testing.T) {
	h, _, _ := newTestHandler(t, "", func(ctx context.Context, action keys.Action) error {
		t.Errorf("ran %v", action)
		return nil
	})

	if err := h.handle(context.Background(), xproto.KeyPressEvent{}); err != nil {
		t.Fatal(err)
	}
}

func TestHandler_Exit(t *testing.T) {
	h, _, _ := newTestHandler(t, "M-A-Escape", func(ctx context.Context, action keys.Action) error {
		if _, ok := action.(keys.Exit); !ok {
			t.Errorf("action = %T, want keys.Exit", action)
		}
		return actions.ErrQuit
	})

	err := h.handle(context.Background(), xproto.KeyPressEvent{})
	if !errors.Is(err, suture.ErrTerminateSupervisorTree) {
		t.Errorf("err = %v, want suture.ErrTerminateSupervisorTree", err)
	}
}

func TestHandler_ActionErrorsKeepRunning(t *testing.T) {
	for _, actionErr := range []error{workspaces.ErrNoTag, errors.New("picker failed")} {
		h, _, _ := newTestHandler(t, "M-f", func(ctx context.Context, action keys.Action) error {
			return actionErr
		})

		if err := h.handle(context.Background(), xproto.KeyPressEvent{}); err != nil {
			t.Errorf("%v: session ended with %v", actionErr, err)
		}
	}
}

func TestHandler_PropertyNotify(t *testing.T) {
	h, state, _ := newTestHandler(t, "", nil)

	var events []StateChanged
	bus.Subscribe(h.bus, "test", func(ctx context.Context, ev StateChanged) error {
		events = append(events, ev)
		return nil
	})

	if err := h.handle(context.Background(), xproto.PropertyNotifyEvent{}); err != nil {
		t.Fatal(err)
	}
	if state.refreshes != 1 || len(events) != 1 || !events[0].Clients {
		t.Errorf("refreshes %d, events %v", state.refreshes, events)
	}

	state.change = false
	if err := h.handle(context.Background(), xproto.PropertyNotifyEvent{}); err != nil {
		t.Fatal(err)
	}
	if state.refreshes != 1 || len(events) != 1 {
		t.Errorf("unrelated property: refreshes %d, events %d", state.refreshes, len(events))
	}

	state.change = true
	state.err = errors.New("bad window")
	if err := h.handle(context.Background(), xproto.PropertyNotifyEvent{}); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("failed refresh published %d events", len(events))
	}
}

func TestHandler_Expose(t *testing.T) {
	h, _, sb := newTestHandler(t, "", nil)

	h.handle(context.Background(), xproto.ExposeEvent{Count: 2})
	h.handle(context.Background(), xproto.ExposeEvent{Count: 0})

	if sb.forced != 1 {
		t.Errorf("forced redraws = %d, want 1", sb.forced)
	}
}
