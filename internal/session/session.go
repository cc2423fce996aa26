// Package session runs the bar and key bindings against the X server.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ItsNotGoodName/x-dotwm/internal/actions"
	"github.com/ItsNotGoodName/x-dotwm/internal/bar"
	"github.com/ItsNotGoodName/x-dotwm/internal/bus"
	"github.com/ItsNotGoodName/x-dotwm/internal/config"
	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/ItsNotGoodName/x-dotwm/internal/keys"
	"github.com/ItsNotGoodName/x-dotwm/internal/menu"
	"github.com/ItsNotGoodName/x-dotwm/internal/procs"
	"github.com/ItsNotGoodName/x-dotwm/internal/sysenv"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
	"github.com/ItsNotGoodName/x-dotwm/internal/xwm"
	"github.com/google/uuid"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
)

// redrawInterval is how often interval texts are checked for changes.
const redrawInterval = time.Second

var errConnClosed = errors.New("x connection closed")

// StateChanged is published after the host state was refreshed.
type StateChanged struct {
	Snapshot bar.Snapshot
	// Clients is set when the client list changed.
	Clients bool
}

// Tags are "1" to "count".
func Tags(count int) []string {
	tags := make([]string, count)
	for i := range tags {
		tags[i] = strconv.Itoa(i + 1)
	}
	return tags
}

type Session struct {
	cfg     config.Config
	env     sysenv.Env
	startup *sync.Once
}

func New(cfg config.Config, env sysenv.Env) *Session {
	return &Session{
		cfg:     cfg,
		env:     env,
		startup: &sync.Once{},
	}
}

func (*Session) String() string {
	return "session.Session"
}

// Serve runs one X session. It returns suture.ErrTerminateSupervisorTree when
// the user exits.
func (s *Session) Serve(ctx context.Context) error {
	log := slog.With("package", "session", "session", uuid.NewString())

	conn, err := xwm.Connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	wm := xwm.NewHost(conn)
	tags := Tags(s.cfg.Workspaces.Count)
	if err := wm.PublishTags(tags); err != nil {
		log.Warn("Failed to publish tags", "error", err)
	}
	if err := wm.WatchRoot(); err != nil {
		return err
	}
	if err := wm.Refresh(); err != nil {
		return err
	}

	table, err := keys.Build(s.cfg.KeyOptions())
	if err != nil {
		return err
	}
	keyMap, err := conn.GrabKeys(table)
	if err != nil {
		return err
	}
	defer conn.UngrabKeys()

	kind, err := menu.ParseKind(s.cfg.Picker.Kind)
	if err != nil {
		return err
	}
	picker, err := menu.New(kind, s.cfg.Picker.Style, menu.ExecRunner)
	if err != nil {
		return err
	}

	procTable := procs.NewTable(nil)
	if err := procTable.Refresh(ctx); err != nil {
		log.Warn("Failed to refresh process table", "error", err)
	}

	executor := &actions.Executor{
		Host:    wm,
		Picker:  picker,
		Procs:   procTable,
		Display: s.cfg.DisplayConfig(s.env.ShellLocation()),
		Spawner: actions.ShellSpawner{},
		Prompts: actions.Prompts{
			Workspace: s.cfg.Picker.WorkspacePrompt,
			SendTo:    s.cfg.Picker.SendToPrompt,
		},
		Tags:         tags,
		HostCommands: s.cfg.HostCommands,
	}

	sb, err := NewStatusBar(s.cfg.Bar, DefaultSources(s.cfg.Bar), nil)
	if err != nil {
		return err
	}
	docks, err := createDocks(conn, sb, wm.State().Screens, s.cfg.Bar.Background)
	if err != nil {
		return err
	}
	defer func() {
		for _, d := range docks {
			d.Destroy()
		}
	}()

	snapshot := func() bar.Snapshot {
		return bar.Snapshot{State: wm.State(), Conn: conn, Procs: procTable}
	}

	b := bus.New()
	bus.Subscribe(b, "session.procs", func(ctx context.Context, ev StateChanged) error {
		if !ev.Clients {
			return nil
		}
		return procTable.Refresh(ctx)
	})
	bus.Subscribe(b, "session.bar", func(ctx context.Context, ev StateChanged) error {
		return sb.Refresh(ev.Snapshot)
	})

	s.startup.Do(func() {
		programs := make([]actions.StartupProgram, len(s.cfg.Startup))
		for i, p := range s.cfg.Startup {
			programs[i] = actions.StartupProgram{Program: p.Program, Args: p.Args}
		}
		actions.Startup(ctx, actions.ShellSpawner{}, procTable, sysenv.InPath, programs)
	})

	if err := sb.Startup(ctx, snapshot()); err != nil {
		return err
	}

	log.Info("Session started", "screens", len(docks), "bindings", table.Len())

	h := &handler{
		log:      log,
		state:    wm,
		chord:    keyMap.Chord,
		table:    table,
		run:      executor.Run,
		bar:      sb,
		bus:      b,
		snapshot: snapshot,
		isClientList: func(ev xproto.PropertyNotifyEvent) bool {
			name, err := conn.AtomName(ev.Atom)
			return err == nil && name == "_NET_CLIENT_LIST"
		},
	}

	eventC := make(chan xgb.Event)
	go xwm.ReceiveEvents(ctx, conn.X, eventC)

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := sb.Redraw(false); err != nil {
				log.Error("Failed to redraw bar", "error", err)
			}
		case ev, ok := <-eventC:
			if !ok {
				return errConnClosed
			}
			if err := h.handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func createDocks(conn *xwm.Conn, sb *bar.StatusBar, screens []host.Screen, background string) ([]*xwm.Dock, error) {
	bg, err := bar.ParseColor(background)
	if err != nil {
		return nil, err
	}

	docks := make([]*xwm.Dock, 0, len(screens))
	surfaces := make([]bar.Surface, 0, len(screens))
	for i, screen := range screens {
		dock, err := conn.CreateDock(screen, sb.ForScreen(i).Height, bg.Pixel())
		if err != nil {
			for _, d := range docks {
				d.Destroy()
			}
			return nil, fmt.Errorf("screen %d: %w", i, err)
		}
		docks = append(docks, dock)
		surfaces = append(surfaces, dock)
	}

	if err := sb.Attach(surfaces); err != nil {
		for _, d := range docks {
			d.Destroy()
		}
		return nil, err
	}

	return docks, nil
}

type stateSource interface {
	Refresh() error
	IsStateChange(ev xproto.PropertyNotifyEvent) bool
}

type redrawer interface {
	Redraw(force bool) error
}

// handler reacts to X events of one session.
type handler struct {
	log          *slog.Logger
	state        stateSource
	chord        func(ev xproto.KeyPressEvent) (string, bool)
	table        keys.Table
	run          func(ctx context.Context, action keys.Action) error
	bar          redrawer
	bus          *bus.Bus
	snapshot     func() bar.Snapshot
	isClientList func(ev xproto.PropertyNotifyEvent) bool
}

// handle returns an error only when the session should end.
func (h *handler) handle(ctx context.Context, ev xgb.Event) error {
	switch ev := ev.(type) {
	case xproto.PropertyNotifyEvent:
		if !h.state.IsStateChange(ev) {
			return nil
		}
		if err := h.state.Refresh(); err != nil {
			h.log.Error("Failed to refresh state", "error", err)
			return nil
		}
		bus.Publish(ctx, h.bus, StateChanged{
			Snapshot: h.snapshot(),
			Clients:  h.isClientList(ev),
		})
	case xproto.ExposeEvent:
		if ev.Count != 0 {
			return nil
		}
		if err := h.bar.Redraw(true); err != nil {
			h.log.Error("Failed to redraw bar", "error", err)
		}
	case xproto.KeyPressEvent:
		chord, ok := h.chord(ev)
		if !ok {
			return nil
		}
		action, ok := h.table.Lookup(chord)
		if !ok {
			return nil
		}

		err := h.run(ctx, action)
		switch {
		case err == nil:
		case errors.Is(err, actions.ErrQuit):
			h.log.Info("Exiting", "chord", chord)
			return suture.ErrTerminateSupervisorTree
		case errors.Is(err, workspaces.ErrNoTag):
			h.log.Info("No workspace selected", "chord", chord, "error", err)
		default:
			h.log.Error("Failed to run action", "chord", chord, "action", keys.Describe(action), "error", err)
		}
	default:
		h.log.Debug("Unhandled event", "event", ev.String())
	}

	return nil
}
