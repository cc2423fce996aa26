// Package actions runs the actions bound in the key table against the host.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/ItsNotGoodName/x-dotwm/internal/keys"
	"github.com/ItsNotGoodName/x-dotwm/internal/menu"
	"github.com/ItsNotGoodName/x-dotwm/internal/procs"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
)

// ErrQuit is returned by Run for the Exit action.
var ErrQuit = errors.New("quit")

// Spawner starts a shell command without waiting for it.
type Spawner interface {
	Spawn(ctx context.Context, command string) error
}

// ShellSpawner runs commands through `sh -c` in their own session so they
// outlive x-dotwm.
type ShellSpawner struct{}

func (ShellSpawner) Spawn(ctx context.Context, command string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %q: %w", command, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("Spawned command exited", "package", "actions", "command", command, "error", err)
		}
	}()

	return nil
}

type Prompts struct {
	Workspace string
	SendTo    string
}

type Executor struct {
	Host    host.Host
	Picker  menu.Picker
	Procs   *procs.Table
	Display workspaces.DisplayConfig
	Spawner Spawner
	Prompts Prompts
	// Tags is every tag offered by the workspace menus.
	Tags []string
	// HostCommands are shell commands for operations the host does not support,
	// keyed by operation name.
	HostCommands map[string]string
}

func (e *Executor) Run(ctx context.Context, action keys.Action) error {
	slog.Debug("Running action", "package", "actions", "action", keys.Describe(action))

	switch a := action.(type) {
	case keys.FocusTag:
		return e.Host.FocusTag(a.Tag)
	case keys.MoveToTag:
		return e.Host.MoveFocusedToTag(a.Tag)
	case keys.Modify:
		return e.fallback(a.Op.String(), e.Host.Modify(a.Op))
	case keys.LayoutMessage:
		return e.fallback(a.Msg.String(), e.Host.SendLayoutMessage(a.Msg))
	case keys.Spawn:
		if strings.TrimSpace(a.Command) == "" {
			return nil
		}
		return e.Spawner.Spawn(ctx, a.Command)
	case keys.WorkspaceMenu:
		return e.workspaceMenu(ctx, e.Prompts.Workspace, false, e.Host.FocusTag)
	case keys.SendToWorkspaceMenu:
		return e.workspaceMenu(ctx, e.Prompts.SendTo, true, e.Host.MoveFocusedToTag)
	case keys.GotoWorkspaceByApps:
		return e.gotoWorkspaceByApps(ctx)
	case keys.Exit:
		return ErrQuit
	default:
		return fmt.Errorf("unknown action %T", action)
	}
}

// fallback runs the host command named name when the host returned
// ErrUnsupported.
func (e *Executor) fallback(name string, err error) error {
	if !errors.Is(err, host.ErrUnsupported) {
		return err
	}

	command, ok := e.HostCommands[name]
	if !ok || command == "" {
		return fmt.Errorf("%s: %w", name, err)
	}

	return e.Spawner.Spawn(context.Background(), command)
}

func (e *Executor) prompt(text string, bottom, ignoreCase bool) menu.Prompt {
	return menu.Prompt{
		Text:       text,
		Screen:     e.Host.State().FocusedScreen,
		Bottom:     bottom,
		IgnoreCase: ignoreCase,
	}
}

func (e *Executor) workspaceMenu(ctx context.Context, text string, bottom bool, apply func(tag string) error) error {
	tags := e.Tags
	if len(tags) == 0 {
		tags = e.Host.State().OrderedTags()
	}

	match, err := e.Picker.Pick(ctx, tags, e.prompt(text, bottom, false))
	if err != nil {
		return err
	}
	if match.Kind != menu.MatchLine {
		return nil
	}

	return apply(match.Line)
}

func (e *Executor) gotoWorkspaceByApps(ctx context.Context) error {
	if err := e.Procs.Refresh(ctx); err != nil {
		slog.Warn("Failed to refresh process table", "package", "actions", "error", err)
	}

	summaries := workspaces.Summarize(e.Host.State(), e.Host, e.Procs)
	lines := workspaces.Lines(workspaces.Entries(summaries, e.Display))

	match, err := e.Picker.Pick(ctx, lines, e.prompt(e.Prompts.Workspace, false, true))
	if err != nil {
		return err
	}
	if match.Kind != menu.MatchLine {
		return nil
	}

	tag, err := workspaces.ExtractTag(match.Line)
	if err != nil {
		return err
	}

	return e.Host.FocusTag(tag)
}

type StartupProgram struct {
	Program string
	Args    string
}

// Startup spawns each program that is in PATH and not already running.
func Startup(ctx context.Context, spawner Spawner, table *procs.Table, inPath func(string) bool, programs []StartupProgram) {
	if err := table.Refresh(ctx); err != nil {
		slog.Warn("Failed to refresh process table", "package", "actions", "error", err)
	}

	for _, p := range programs {
		if !inPath(p.Program) {
			slog.Info("Skipping startup program not in PATH", "package", "actions", "program", p.Program)
			continue
		}
		if table.Running(p.Program) {
			slog.Info("Skipping startup program already running", "package", "actions", "program", p.Program)
			continue
		}

		command := strings.TrimSpace(p.Program + " " + p.Args)
		if err := spawner.Spawn(ctx, command); err != nil {
			slog.Error("Failed to spawn startup program", "package", "actions", "command", command, "error", err)
		}
	}
}
