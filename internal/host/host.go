// Package host describes the window manager that x-dotwm configures.
//
// Everything x-dotwm knows about windows, workspaces and screens goes through
// these types so the rest of the module never talks to X directly.
package host

import (
	"errors"
	"image"
	"strings"
)

var ErrUnsupported = errors.New("operation not supported by host")

// Xid is an X window id.
type Xid uint32

// Conn answers questions about individual windows.
type Conn interface {
	// WindowTitle returns the title of a window.
	WindowTitle(id Xid) (string, error)
	// GetProp returns the named property of a window. The bool is false when the
	// window does not carry the property.
	GetProp(id Xid, name string) (Prop, bool, error)
}

// ClientSet mutates the window manager's workspaces and clients.
type ClientSet interface {
	FocusTag(tag string) error
	MoveFocusedToTag(tag string) error
	// Modify returns ErrUnsupported when the host cannot perform op.
	Modify(op ModifyOp) error
	// SendLayoutMessage returns ErrUnsupported when the host cannot deliver msg.
	SendLayoutMessage(msg LayoutMessage) error
}

// Host is the full capability set handed to actions.
type Host interface {
	Conn
	ClientSet
	State() *State
}

type Workspace struct {
	ID      int
	Clients []Xid
}

type Screen struct {
	Index    int
	Geometry image.Rectangle
}

// State is a snapshot of the window manager.
type State struct {
	Workspaces []Workspace
	// Tags maps workspace id to its tag.
	Tags          map[int]string
	CurrentTag    string
	Screens       []Screen
	FocusedScreen int
	// Focused is zero when no client has focus.
	Focused Xid
}

func (s *State) TagForWorkspace(id int) (string, bool) {
	tag, ok := s.Tags[id]
	return tag, ok
}

// OrderedTags returns the tags in workspace order, skipping unmapped workspaces.
func (s *State) OrderedTags() []string {
	tags := make([]string, 0, len(s.Workspaces))
	for _, ws := range s.Workspaces {
		if tag, ok := s.Tags[ws.ID]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (s *State) Workspace(tag string) (Workspace, bool) {
	for _, ws := range s.Workspaces {
		if s.Tags[ws.ID] == tag {
			return ws, true
		}
	}
	return Workspace{}, false
}

// Prop is one of PropCardinal, PropUTF8String, PropWindow, PropAtom or PropBytes.
type Prop interface {
	prop()
}

type (
	PropCardinal   []uint32
	PropUTF8String []string
	PropWindow     []Xid
	PropAtom       []string
	PropBytes      []byte
)

func (PropCardinal) prop()   {}
func (PropUTF8String) prop() {}
func (PropWindow) prop()     {}
func (PropAtom) prop()       {}
func (PropBytes) prop()      {}

type ModifyOp int

const (
	FocusDown ModifyOp = iota
	FocusUp
	SwapDown
	SwapUp
	KillFocused
	ToggleTag
	NextScreen
	PreviousScreen
	NextLayout
	PreviousLayout
	SwapFocusAndHead
)

var modifyOpNames = [...]string{
	FocusDown:        "focus_down",
	FocusUp:          "focus_up",
	SwapDown:         "swap_down",
	SwapUp:           "swap_up",
	KillFocused:      "kill_focused",
	ToggleTag:        "toggle_tag",
	NextScreen:       "next_screen",
	PreviousScreen:   "previous_screen",
	NextLayout:       "next_layout",
	PreviousLayout:   "previous_layout",
	SwapFocusAndHead: "swap_focus_and_head",
}

func (op ModifyOp) String() string {
	if op < 0 || int(op) >= len(modifyOpNames) {
		return "unknown"
	}
	return modifyOpNames[op]
}

type LayoutMessageKind int

const (
	IncMain LayoutMessageKind = iota
	ExpandMain
	ShrinkMain
)

type LayoutMessage struct {
	Kind LayoutMessageKind
	// Delta is only used by IncMain.
	Delta int
}

// String names the message the way host commands are keyed in the config.
func (m LayoutMessage) String() string {
	switch m.Kind {
	case IncMain:
		if m.Delta < 0 {
			return "dec_main"
		}
		return "inc_main"
	case ExpandMain:
		return "expand_main"
	case ShrinkMain:
		return "shrink_main"
	default:
		return "unknown"
	}
}

// ParseModifyOp is the inverse of ModifyOp.String.
func ParseModifyOp(s string) (ModifyOp, bool) {
	s = strings.TrimSpace(s)
	for i, name := range modifyOpNames {
		if name == s {
			return ModifyOp(i), true
		}
	}
	return 0, false
}

var layoutMessageNames = []string{"inc_main", "dec_main", "expand_main", "shrink_main"}

// IsCommandName reports whether name is a ModifyOp or LayoutMessage name, the
// keys accepted for host commands.
func IsCommandName(name string) bool {
	if _, ok := ParseModifyOp(name); ok {
		return true
	}
	for _, n := range layoutMessageNames {
		if n == name {
			return true
		}
	}
	return false
}
