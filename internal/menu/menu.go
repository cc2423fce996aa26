// Package menu shows a list of lines in an external picker such as dmenu or rofi.
package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strconv"
	"strings"
)

var ErrUnknownKind = errors.New("unknown picker kind")

type Kind string

const (
	KindDMenu Kind = "dmenu"
	KindRofi  Kind = "rofi"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDMenu, KindRofi:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

type Prompt struct {
	Text       string
	Screen     int
	Bottom     bool
	IgnoreCase bool
}

// Style is only understood by dmenu. Empty fields are left to the picker.
type Style struct {
	Font       string `json:"font" yaml:"font"`
	NormalBG   string `json:"normal_bg" yaml:"normal_bg"`
	NormalFG   string `json:"normal_fg" yaml:"normal_fg"`
	SelectedBG string `json:"selected_bg" yaml:"selected_bg"`
	SelectedFG string `json:"selected_fg" yaml:"selected_fg"`
}

type MatchKind int

const (
	// MatchNone means the user cancelled or picked nothing.
	MatchNone MatchKind = iota
	MatchLine
	MatchUserInput
)

type Match struct {
	Kind MatchKind
	// Index is the position of Line in the candidates when Kind is MatchLine.
	Index int
	Line  string
}

type Picker interface {
	// Pick blocks until the user chooses a line or cancels.
	Pick(ctx context.Context, lines []string, prompt Prompt) (Match, error)
}

// Runner runs name with args, feeding stdin, and returns standard output.
type Runner func(ctx context.Context, name string, args []string, stdin string) ([]byte, error)

func ExecRunner(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Output()
}

type Command struct {
	kind  Kind
	style Style
	run   Runner
}

func New(kind Kind, style Style, run Runner) (*Command, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if run == nil {
		run = ExecRunner
	}
	return &Command{
		kind:  kind,
		style: style,
		run:   run,
	}, nil
}

// Args returns the program and arguments used to show prompt.
func (c *Command) Args(prompt Prompt) (string, []string) {
	switch c.kind {
	case KindRofi:
		args := []string{"-dmenu", "-monitor", strconv.Itoa(prompt.Screen)}
		if prompt.Text != "" {
			args = append(args, "-p", prompt.Text)
		}
		if prompt.IgnoreCase {
			args = append(args, "-i")
		}
		if prompt.Bottom {
			args = append(args, "-location", "6")
		}
		return "rofi", args
	default:
		args := []string{"-m", strconv.Itoa(prompt.Screen)}
		if prompt.Text != "" {
			args = append(args, "-p", prompt.Text)
		}
		if prompt.IgnoreCase {
			args = append(args, "-i")
		}
		if prompt.Bottom {
			args = append(args, "-b")
		}
		args = appendFlag(args, "-fn", c.style.Font)
		args = appendFlag(args, "-nb", c.style.NormalBG)
		args = appendFlag(args, "-nf", c.style.NormalFG)
		args = appendFlag(args, "-sb", c.style.SelectedBG)
		args = appendFlag(args, "-sf", c.style.SelectedFG)
		return "dmenu", args
	}
}

func appendFlag(args []string, flag, value string) []string {
	if value == "" {
		return args
	}
	return append(args, flag, value)
}

func (c *Command) Pick(ctx context.Context, lines []string, prompt Prompt) (Match, error) {
	name, args := c.Args(prompt)

	out, err := c.run(ctx, name, args, strings.Join(lines, "\n"))
	if err != nil {
		// Both dmenu and rofi exit with 1 when the user escapes
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return Match{Kind: MatchNone}, nil
		}
		return Match{}, fmt.Errorf("%s: %w", name, err)
	}

	choice := string(bytes.TrimRight(out, "\r\n"))
	slog.Debug("Picker returned", "package", "menu", "picker", name, "choice", choice)

	return NewMatch(lines, choice), nil
}

// NewMatch classifies choice against the candidates.
func NewMatch(lines []string, choice string) Match {
	if choice == "" {
		return Match{Kind: MatchNone}
	}
	if idx := slices.Index(lines, choice); idx != -1 {
		return Match{Kind: MatchLine, Index: idx, Line: choice}
	}
	return Match{Kind: MatchUserInput, Line: choice}
}
