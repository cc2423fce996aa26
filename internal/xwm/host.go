package xwm

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/jezek/xgb/xinerama"
	"github.com/jezek/xgb/xproto"
)

// Root window properties that change what State returns.
var StateAtoms = []string{
	"_NET_CLIENT_LIST",
	"_NET_CURRENT_DESKTOP",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_ACTIVE_WINDOW",
}

// desktopAll is the _NET_WM_DESKTOP of sticky windows.
const desktopAll = 0xFFFFFFFF

// Host is the EWMH window manager seen through Conn. It implements host.Host.
type Host struct {
	*Conn
	state   *host.State
	prevTag string
}

var _ host.Host = (*Host)(nil)

func NewHost(conn *Conn) *Host {
	return &Host{
		Conn:  conn,
		state: &host.State{Tags: map[int]string{}},
	}
}

func (h *Host) State() *host.State {
	return h.state
}

// Refresh reads a new snapshot of the window manager.
func (h *Host) Refresh() error {
	state, err := h.readState()
	if err != nil {
		return err
	}

	if state.CurrentTag != h.state.CurrentTag && h.state.CurrentTag != "" {
		h.prevTag = h.state.CurrentTag
	}
	h.state = state

	return nil
}

func (h *Host) readState() (*host.State, error) {
	state := &host.State{Tags: map[int]string{}}

	count, err := h.cardinals(h.Root, "_NET_NUMBER_OF_DESKTOPS")
	if err != nil {
		return nil, err
	}
	names, err := h.utf8Strings(h.Root, "_NET_DESKTOP_NAMES")
	if err != nil {
		return nil, err
	}

	n := 0
	if len(count) > 0 {
		n = int(count[0])
	}
	state.Workspaces = make([]host.Workspace, n)
	for i := range state.Workspaces {
		state.Workspaces[i].ID = i
		if i < len(names) {
			state.Tags[i] = names[i]
		}
	}

	clients, err := h.cardinals(h.Root, "_NET_CLIENT_LIST")
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		desktop, err := h.cardinals(xproto.Window(c), "_NET_WM_DESKTOP")
		if err != nil {
			// Windows can disappear between reading the list and the property
			slog.Debug("Failed to get client desktop", "package", "xwm", "window", c, "error", err)
			continue
		}
		if len(desktop) == 0 || desktop[0] == desktopAll || int(desktop[0]) >= n {
			continue
		}
		ws := &state.Workspaces[desktop[0]]
		ws.Clients = append(ws.Clients, host.Xid(c))
	}

	if current, err := h.cardinals(h.Root, "_NET_CURRENT_DESKTOP"); err != nil {
		return nil, err
	} else if len(current) > 0 {
		state.CurrentTag = state.Tags[int(current[0])]
	}

	if active, err := h.cardinals(h.Root, "_NET_ACTIVE_WINDOW"); err != nil {
		return nil, err
	} else if len(active) > 0 {
		state.Focused = host.Xid(active[0])
	}

	state.Screens = h.screens()
	state.FocusedScreen = h.focusedScreen(state.Focused, state.Screens)

	return state, nil
}

// screens returns the Xinerama heads, or the root window when there are none.
func (h *Host) screens() []host.Screen {
	if h.xinerama {
		reply, err := xinerama.QueryScreens(h.X).Reply()
		if err == nil && len(reply.ScreenInfo) > 0 {
			screens := make([]host.Screen, len(reply.ScreenInfo))
			for i, s := range reply.ScreenInfo {
				screens[i] = host.Screen{
					Index:    i,
					Geometry: image.Rect(int(s.XOrg), int(s.YOrg), int(s.XOrg)+int(s.Width), int(s.YOrg)+int(s.Height)),
				}
			}
			return screens
		}
		slog.Warn("Failed to query xinerama screens", "package", "xwm", "error", err)
	}

	return []host.Screen{{
		Index:    0,
		Geometry: image.Rect(0, 0, int(h.Screen.WidthInPixels), int(h.Screen.HeightInPixels)),
	}}
}

// focusedScreen is the screen holding the center of the focused window.
func (h *Host) focusedScreen(focused host.Xid, screens []host.Screen) int {
	if focused == 0 {
		return 0
	}

	geom, err := xproto.GetGeometry(h.X, xproto.Drawable(focused)).Reply()
	if err != nil {
		return 0
	}
	pos, err := xproto.TranslateCoordinates(h.X, xproto.Window(focused), h.Root, 0, 0).Reply()
	if err != nil {
		return 0
	}

	center := image.Pt(int(pos.DstX)+int(geom.Width)/2, int(pos.DstY)+int(geom.Height)/2)
	for _, s := range screens {
		if center.In(s.Geometry) {
			return s.Index
		}
	}
	return 0
}

func (h *Host) desktop(tag string) (uint32, error) {
	for _, ws := range h.state.Workspaces {
		if h.state.Tags[ws.ID] == tag {
			return uint32(ws.ID), nil
		}
	}
	return 0, fmt.Errorf("unknown tag %q", tag)
}

// clientMessage sends an EWMH request about win to the window manager.
func (h *Host) clientMessage(win xproto.Window, name string, data ...uint32) error {
	atom, err := h.Atom(name)
	if err != nil {
		return err
	}

	data = append(data, make([]uint32, 5-len(data))...)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	return xproto.SendEventChecked(h.X, false, h.Root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(ev.Bytes())).Check()
}

// Source indication of EWMH requests, 2 is a pager acting for the user.
const sourcePager = 2

func (h *Host) FocusTag(tag string) error {
	desktop, err := h.desktop(tag)
	if err != nil {
		return err
	}
	return h.clientMessage(h.Root, "_NET_CURRENT_DESKTOP", desktop, xproto.TimeCurrentTime)
}

func (h *Host) MoveFocusedToTag(tag string) error {
	desktop, err := h.desktop(tag)
	if err != nil {
		return err
	}
	if h.state.Focused == 0 {
		return nil
	}
	return h.clientMessage(xproto.Window(h.state.Focused), "_NET_WM_DESKTOP", desktop, sourcePager)
}

func (h *Host) Modify(op host.ModifyOp) error {
	switch op {
	case host.FocusDown:
		return h.cycleFocus(1)
	case host.FocusUp:
		return h.cycleFocus(-1)
	case host.KillFocused:
		if h.state.Focused == 0 {
			return nil
		}
		return h.clientMessage(xproto.Window(h.state.Focused), "_NET_CLOSE_WINDOW", xproto.TimeCurrentTime, sourcePager)
	case host.ToggleTag:
		if h.prevTag == "" {
			return nil
		}
		return h.FocusTag(h.prevTag)
	default:
		return fmt.Errorf("%s: %w", op, host.ErrUnsupported)
	}
}

// cycleFocus activates the client step places away from the focused client on
// the current workspace.
func (h *Host) cycleFocus(step int) error {
	ws, ok := h.state.Workspace(h.state.CurrentTag)
	if !ok || len(ws.Clients) == 0 {
		return nil
	}

	next := NextClient(ws.Clients, h.state.Focused, step)
	return h.clientMessage(xproto.Window(next), "_NET_ACTIVE_WINDOW", sourcePager, xproto.TimeCurrentTime, uint32(h.state.Focused))
}

// NextClient wraps around clients. The first client is returned when focused
// is not one of them.
func NextClient(clients []host.Xid, focused host.Xid, step int) host.Xid {
	idx := slices.Index(clients, focused)
	if idx == -1 {
		return clients[0]
	}
	n := len(clients)
	return clients[((idx+step)%n+n)%n]
}

func (h *Host) SendLayoutMessage(msg host.LayoutMessage) error {
	return fmt.Errorf("%s: %w", msg, host.ErrUnsupported)
}

// PublishTags asks the window manager for one desktop per tag and names them.
func (h *Host) PublishTags(tags []string) error {
	if err := h.clientMessage(h.Root, "_NET_NUMBER_OF_DESKTOPS", uint32(len(tags))); err != nil {
		return fmt.Errorf("set number of desktops: %w", err)
	}

	prop, err := h.Atom("_NET_DESKTOP_NAMES")
	if err != nil {
		return err
	}
	typ, err := h.Atom("UTF8_STRING")
	if err != nil {
		return err
	}

	data := joinNull(tags)
	if err := xproto.ChangePropertyChecked(h.X, xproto.PropModeReplace, h.Root, prop, typ, 8, uint32(len(data)), data).Check(); err != nil {
		return fmt.Errorf("set desktop names: %w", err)
	}

	return nil
}

// WatchRoot subscribes to property changes of the root window.
func (h *Host) WatchRoot() error {
	return xproto.ChangeWindowAttributesChecked(h.X, h.Root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check()
}

// IsStateChange reports whether ev changes the state returned by Refresh.
func (h *Host) IsStateChange(ev xproto.PropertyNotifyEvent) bool {
	if ev.Window != h.Root {
		return false
	}
	name, err := h.AtomName(ev.Atom)
	if err != nil {
		return false
	}
	return slices.Contains(StateAtoms, name)
}
