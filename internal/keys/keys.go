// Package keys builds the table of key chords and the actions they trigger.
package keys

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
)

// Action is one of the action types below. Each carries only what it needs.
type Action interface {
	action()
}

type (
	FocusTag struct {
		Tag string
	}
	MoveToTag struct {
		Tag string
	}
	Modify struct {
		Op host.ModifyOp
	}
	LayoutMessage struct {
		Msg host.LayoutMessage
	}
	Spawn struct {
		Command string
	}
	WorkspaceMenu       struct{}
	SendToWorkspaceMenu struct{}
	GotoWorkspaceByApps struct{}
	Exit                struct{}
)

func (FocusTag) action()            {}
func (MoveToTag) action()           {}
func (Modify) action()              {}
func (LayoutMessage) action()       {}
func (Spawn) action()               {}
func (WorkspaceMenu) action()       {}
func (SendToWorkspaceMenu) action() {}
func (GotoWorkspaceByApps) action() {}
func (Exit) action()                {}

func Describe(a Action) string {
	switch a := a.(type) {
	case FocusTag:
		return "focus tag " + a.Tag
	case MoveToTag:
		return "move to tag " + a.Tag
	case Modify:
		return a.Op.String()
	case LayoutMessage:
		return a.Msg.String()
	case Spawn:
		return "spawn " + a.Command
	case WorkspaceMenu:
		return "workspace menu"
	case SendToWorkspaceMenu:
		return "send to workspace menu"
	case GotoWorkspaceByApps:
		return "goto workspace by apps"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("%T", a)
	}
}

type Options struct {
	FastAccessWorkspaces int
	Terminal             string
	Launcher             string
	Locker               string
}

type Binding struct {
	Chord  Chord
	Action Action
}

// Table is built once and never modified.
type Table struct {
	bindings map[string]Binding
}

func (t Table) Lookup(chord string) (Action, bool) {
	if c, err := ParseChord(chord); err == nil {
		chord = c.String()
	}
	b, ok := t.bindings[chord]
	return b.Action, ok
}

func (t Table) Len() int {
	return len(t.bindings)
}

// Bindings returns every binding sorted by chord.
func (t Table) Bindings() []Binding {
	bindings := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		bindings = append(bindings, b)
	}
	slices.SortFunc(bindings, func(a, b Binding) int {
		if a.Chord.String() < b.Chord.String() {
			return -1
		}
		if a.Chord.String() > b.Chord.String() {
			return 1
		}
		return 0
	})
	return bindings
}

type entry struct {
	chord  string
	action Action
}

// Build concatenates the per-workspace bindings with the fixed table. A chord
// that appears twice keeps its last action.
func Build(opts Options) (Table, error) {
	return merge(append(WorkspaceEntries(opts.FastAccessWorkspaces), fixedEntries(opts)...))
}

func merge(entries []entry) (Table, error) {
	bindings := make(map[string]Binding, len(entries))
	for _, e := range entries {
		chord, err := ParseChord(e.chord)
		if err != nil {
			return Table{}, err
		}
		// Key on the normalized form so "S-M-x" and "M-S-x" collide
		bindings[chord.String()] = Binding{Chord: chord, Action: e.action}
	}

	return Table{bindings: bindings}, nil
}

// WorkspaceEntries binds M-{n} and M-S-{n} for the first count tags.
func WorkspaceEntries(count int) []entry {
	entries := make([]entry, 0, count*2)
	for i := 1; i <= count; i++ {
		tag := strconv.Itoa(i)
		entries = append(entries,
			entry{chord: "M-" + tag, action: FocusTag{Tag: tag}},
			entry{chord: "M-S-" + tag, action: MoveToTag{Tag: tag}},
		)
	}
	return entries
}

func fixedEntries(opts Options) []entry {
	return []entry{
		{"M-f", GotoWorkspaceByApps{}},
		{"M-g", WorkspaceMenu{}},
		{"M-S-g", SendToWorkspaceMenu{}},
		{"M-n", Modify{Op: host.FocusDown}},
		{"M-a", Modify{Op: host.FocusUp}},
		{"M-S-n", Modify{Op: host.SwapDown}},
		{"M-S-a", Modify{Op: host.SwapUp}},
		{"M-S-c", Modify{Op: host.KillFocused}},
		{"M-Tab", Modify{Op: host.ToggleTag}},
		{"M-m", Modify{Op: host.NextScreen}},
		{"M-i", Modify{Op: host.PreviousScreen}},
		{"M-space", Modify{Op: host.NextLayout}},
		{"M-S-space", Modify{Op: host.PreviousLayout}},
		{"M-S-Up", LayoutMessage{Msg: host.LayoutMessage{Kind: host.IncMain, Delta: 1}}},
		{"M-S-Down", LayoutMessage{Msg: host.LayoutMessage{Kind: host.IncMain, Delta: -1}}},
		{"M-l", LayoutMessage{Msg: host.LayoutMessage{Kind: host.ExpandMain}}},
		{"M-h", LayoutMessage{Msg: host.LayoutMessage{Kind: host.ShrinkMain}}},
		{"M-Return", Modify{Op: host.SwapFocusAndHead}},
		{"M-p", Spawn{Command: opts.Launcher}},
		{"M-S-z", Spawn{Command: opts.Locker}},
		{"M-S-Return", Spawn{Command: opts.Terminal}},
		{"M-A-Escape", Exit{}},
	}
}
