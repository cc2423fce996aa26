package bar

import (
	"image"
	"log/slog"
	"slices"
	"strings"

	"github.com/ItsNotGoodName/x-dotwm/internal/logging"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
)

type WsMeta struct {
	Tag      string
	Occupied bool
}

type FocusState int

const (
	Unfocused FocusState = iota
	FocusedOnThisScreen
	FocusedOnOtherScreen
)

// WorkspaceUI decides how each workspace of a Workspaces widget looks.
type WorkspaceUI interface {
	// UpdateFromState reports whether anything the UI displays changed.
	UpdateFromState(metas []WsMeta, focusedTags []string, snap Snapshot) bool
	BackgroundColor() Color
	ColorsForWorkspace(meta WsMeta, focus FocusState, screenHasFocus bool) (fg, bg Color)
	// UITag is the text shown for a workspace, empty hides it.
	UITag(meta WsMeta) string
}

// Workspaces shows the tags of every workspace.
type Workspaces struct {
	ui          WorkspaceUI
	padding     int
	metas       []WsMeta
	focusedTags []string
	requireDraw bool
}

func NewWorkspaces(ui WorkspaceUI, padding int) *Workspaces {
	return &Workspaces{
		ui:          ui,
		padding:     padding,
		requireDraw: true,
	}
}

func (ws *Workspaces) focusState(tag string, screen int) FocusState {
	idx := slices.Index(ws.focusedTags, tag)
	switch {
	case idx == -1:
		return Unfocused
	case idx == screen:
		return FocusedOnThisScreen
	default:
		return FocusedOnOtherScreen
	}
}

func (ws *Workspaces) Draw(ctx *Context, screen int, screenHasFocus bool, w, h int) error {
	ctx.FillRect(image.Rect(0, 0, w, h), ws.ui.BackgroundColor())

	x := 0
	for _, meta := range ws.metas {
		tag := ws.ui.UITag(meta)
		if tag == "" {
			continue
		}

		fg, bg := ws.ui.ColorsForWorkspace(meta, ws.focusState(meta.Tag, screen), screenHasFocus)
		x += ctx.DrawText(tag, x, h, TextStyle{
			FG:           fg,
			BG:           bg,
			PaddingLeft:  ws.padding,
			PaddingRight: ws.padding,
		})
	}

	ws.requireDraw = false
	return nil
}

func (ws *Workspaces) CurrentExtent(ctx *Context, h int) (int, int, error) {
	w := 0
	for _, meta := range ws.metas {
		tag := ws.ui.UITag(meta)
		if tag == "" {
			continue
		}
		tw, _ := ctx.TextExtent(tag)
		w += tw + 2*ws.padding
	}
	return w, h, nil
}

func (ws *Workspaces) IsGreedy() bool {
	return false
}

func (ws *Workspaces) RequireDraw() bool {
	return ws.requireDraw
}

func (ws *Workspaces) OnStartup(snap Snapshot) error {
	return ws.OnRefresh(snap)
}

func (ws *Workspaces) OnRefresh(snap Snapshot) error {
	metas := make([]WsMeta, 0, len(snap.State.Workspaces))
	for _, w := range snap.State.Workspaces {
		tag, ok := snap.State.TagForWorkspace(w.ID)
		if !ok {
			continue
		}
		metas = append(metas, WsMeta{Tag: tag, Occupied: len(w.Clients) > 0})
	}

	focusedTags := FocusedTags(snap)

	changed := ws.ui.UpdateFromState(metas, focusedTags, snap)
	if changed || !slices.Equal(metas, ws.metas) || !slices.Equal(focusedTags, ws.focusedTags) {
		ws.requireDraw = true
	}
	ws.metas = metas
	ws.focusedTags = focusedTags

	return nil
}

// FocusedTags is the tag shown on each screen. EWMH only knows the current
// tag, which is shown on the focused screen.
func FocusedTags(snap Snapshot) []string {
	tags := make([]string, max(len(snap.State.Screens), 1))
	if idx := snap.State.FocusedScreen; idx >= 0 && idx < len(tags) {
		tags[idx] = snap.State.CurrentTag
	}
	return tags
}

type IconRule struct {
	// Process is matched as a substring of the process names on a workspace.
	Process string
	Icon    string
}

type AppWorkspaceUIColors struct {
	FG        Color
	BG        Color
	Highlight Color
	Empty     Color
}

// AppWorkspaceUI hides empty workspaces and decorates tags with icons for the
// applications running on them.
type AppWorkspaceUI struct {
	colors    AppWorkspaceUIColors
	icons     []IconRule
	summaries []workspaces.Summary
}

func NewAppWorkspaceUI(colors AppWorkspaceUIColors, icons []IconRule) *AppWorkspaceUI {
	return &AppWorkspaceUI{
		colors: colors,
		icons:  icons,
	}
}

func (ui *AppWorkspaceUI) UpdateFromState(_ []WsMeta, _ []string, snap Snapshot) bool {
	summaries := workspaces.Summarize(snap.State, snap.Conn, snap.Procs)
	if workspaces.EqualAll(ui.summaries, summaries) {
		return false
	}

	slog.Debug("Updating workspace UI", "package", "bar", "workspaces", len(summaries))
	ui.summaries = summaries
	return true
}

func (ui *AppWorkspaceUI) BackgroundColor() Color {
	return ui.colors.BG
}

func (ui *AppWorkspaceUI) ColorsForWorkspace(meta WsMeta, focus FocusState, screenHasFocus bool) (Color, Color) {
	c := ui.colors
	switch {
	case focus == FocusedOnThisScreen && screenHasFocus && meta.Occupied:
		return c.FG, c.Highlight
	case focus == FocusedOnThisScreen && screenHasFocus:
		return c.Empty, c.Highlight
	case focus == FocusedOnThisScreen:
		return c.FG, c.Empty
	case focus == FocusedOnOtherScreen:
		return c.Highlight, c.Empty
	case meta.Occupied:
		return c.FG, c.BG
	default:
		return c.Empty, c.BG
	}
}

func (ui *AppWorkspaceUI) UITag(meta WsMeta) string {
	if !meta.Occupied {
		return ""
	}

	idx := slices.IndexFunc(ui.summaries, func(s workspaces.Summary) bool { return s.Tag == meta.Tag })
	if _, ok := logging.LogMissing(idx, idx != -1, "No summary for occupied workspace "+meta.Tag); !ok {
		return meta.Tag
	}

	return IconicTag(meta.Tag, ui.summaries[idx].Processes(), ui.icons)
}

// IconicTag returns "[tag🎵]" style tags holding the icon of every rule that
// matches one of processes, or tag when nothing matches.
func IconicTag(tag string, processes []string, rules []IconRule) string {
	var icons strings.Builder
	for _, rule := range rules {
		if rule.Process == "" {
			continue
		}
		if slices.ContainsFunc(processes, func(p string) bool { return strings.Contains(p, rule.Process) }) {
			icons.WriteString(rule.Icon)
		}
	}

	if icons.Len() == 0 {
		return tag
	}
	return "[" + tag + icons.String() + "]"
}
