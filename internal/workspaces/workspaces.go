// Package workspaces correlates the windows of each workspace with the
// processes that own them and formats the result for menus and the bar.
package workspaces

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-dotwm/internal/core"
	"github.com/ItsNotGoodName/x-dotwm/internal/host"
)

const (
	PropWMPID = "_NET_WM_PID"

	AppTitleSeparator = " ➥ "
	WindowSeparator   = " | "

	// NonNumericTagOrder places non-numeric tags after every numeric tag.
	NonNumericTagOrder = 999
)

var ErrNoTag = errors.New("no tag for workspace")

// ProcessResolver maps a pid to an executable name.
type ProcessResolver interface {
	ExeName(pid int32) (string, bool)
}

// WindowInfo holds the best-effort lookups for a single window. A nil field means
// the lookup failed or the window did not carry the information.
type WindowInfo struct {
	ID      host.Xid
	Title   *string
	Process *string
}

type Summary struct {
	Tag     string
	Windows []WindowInfo
}

func (s Summary) Titles() []string {
	titles := make([]string, len(s.Windows))
	for i, w := range s.Windows {
		titles[i] = core.Optional(w.Title, "")
	}
	return titles
}

func (s Summary) Processes() []string {
	processes := make([]string, len(s.Windows))
	for i, w := range s.Windows {
		processes[i] = core.Optional(w.Process, "")
	}
	return processes
}

// Equal compares the displayed values of two summaries.
func (s Summary) Equal(o Summary) bool {
	return s.Tag == o.Tag &&
		slices.Equal(s.Titles(), o.Titles()) &&
		slices.Equal(s.Processes(), o.Processes())
}

func EqualAll(a, b []Summary) bool {
	return slices.EqualFunc(a, b, Summary.Equal)
}

// Summarize produces one Summary per workspace in host order.
func Summarize(state *host.State, conn host.Conn, procs ProcessResolver) []Summary {
	summaries := make([]Summary, 0, len(state.Workspaces))
	for _, ws := range state.Workspaces {
		summaries = append(summaries, SummarizeWorkspace(state, conn, procs, ws))
	}
	return summaries
}

func SummarizeWorkspace(state *host.State, conn host.Conn, procs ProcessResolver, ws host.Workspace) Summary {
	tag, ok := state.TagForWorkspace(ws.ID)
	if !ok {
		slog.Warn("Workspace has no tag", "package", "workspaces", "workspace", ws.ID)
	}

	windows := make([]WindowInfo, 0, len(ws.Clients))
	for _, id := range ws.Clients {
		windows = append(windows, WindowInfo{
			ID:      id,
			Title:   windowTitle(conn, id),
			Process: windowProcess(conn, procs, id),
		})
	}

	return Summary{
		Tag:     tag,
		Windows: windows,
	}
}

func windowTitle(conn host.Conn, id host.Xid) *string {
	title, err := conn.WindowTitle(id)
	if err != nil {
		slog.Debug("Failed to get window title", "package", "workspaces", "window", id, "error", err)
		return nil
	}
	return core.Some(title)
}

func windowProcess(conn host.Conn, procs ProcessResolver, id host.Xid) *string {
	prop, ok, err := conn.GetProp(id, PropWMPID)
	if err != nil {
		slog.Debug("Failed to get window pid", "package", "workspaces", "window", id, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	pids, ok := prop.(host.PropCardinal)
	if !ok {
		slog.Debug("Unexpected pid property type", "package", "workspaces", "window", id, "prop", prop)
		return nil
	}

	names := make([]string, 0, len(pids))
	for _, pid := range pids {
		name, _ := procs.ExeName(int32(pid))
		names = append(names, name)
	}
	return core.Some(strings.Join(names, ","))
}

type Substitution struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Substitute applies subs in order and trims the result.
func Substitute(s string, subs []Substitution) string {
	for _, sub := range subs {
		s = strings.ReplaceAll(s, sub.Pattern, sub.Replacement)
	}
	return strings.TrimSpace(s)
}

type DisplayConfig struct {
	NameSubstitutions  []Substitution
	TitleSubstitutions []Substitution
}

// Display joins every "process ➥ title" pair of a workspace.
func Display(s Summary, cfg DisplayConfig) string {
	titles, processes := s.Titles(), s.Processes()
	fragments := make([]string, len(titles))
	for i := range titles {
		fragments[i] = Substitute(processes[i], cfg.NameSubstitutions) +
			AppTitleSeparator +
			Substitute(titles[i], cfg.TitleSubstitutions)
	}
	return strings.Join(fragments, WindowSeparator)
}

type Entry struct {
	Tag     string
	Display string
}

func (e Entry) String() string {
	return e.Tag + ": " + e.Display
}

// Entries formats summaries for a menu, dropping empty workspaces and sorting by tag.
func Entries(summaries []Summary, cfg DisplayConfig) []Entry {
	entries := make([]Entry, 0, len(summaries))
	for _, s := range summaries {
		display := Display(s, cfg)
		if display == "" {
			continue
		}
		entries = append(entries, Entry{Tag: s.Tag, Display: display})
	}
	SortEntries(entries)
	return entries
}

func Lines(entries []Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

func TagOrder(tag string) int {
	n, err := strconv.ParseUint(tag, 10, 16)
	if err != nil {
		return NonNumericTagOrder
	}
	return int(n)
}

func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return TagOrder(a.Tag) - TagOrder(b.Tag)
	})
}

// ExtractTag returns the text before the first colon of a menu line.
func ExtractTag(line string) (string, error) {
	tag, _, found := strings.Cut(line, ":")
	if !found {
		return "", ErrNoTag
	}
	return strings.TrimSpace(tag), nil
}
