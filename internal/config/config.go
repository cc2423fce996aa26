package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ItsNotGoodName/x-dotwm/internal/core"
	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/ItsNotGoodName/x-dotwm/internal/keys"
	"github.com/ItsNotGoodName/x-dotwm/internal/menu"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
)

var ErrInvalid = errors.New("invalid config")

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// NewDriver picks a driver from the file extension, defaulting to YAML.
func NewDriver(filePath string) Driver {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return NewJSON(filePath)
	default:
		return NewYAML(filePath)
	}
}

func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(DefaultConfig()); err != nil {
			return Store{}, err
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

// GetConfig reads and validates the config.
func (p *Store) GetConfig() (Config, error) {
	cfg, err := p.driver.Read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return p.driver.Write(cfg)
}

func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Workspaces.Count < 1 {
		invalid("workspaces.count must be positive, got %d", c.Workspaces.Count)
	}
	if c.Workspaces.FastAccess < 0 || c.Workspaces.FastAccess > 9 {
		invalid("workspaces.fast_access must be between 0 and 9, got %d", c.Workspaces.FastAccess)
	}
	if c.Workspaces.FastAccess > c.Workspaces.Count {
		invalid("workspaces.fast_access %d exceeds workspaces.count %d", c.Workspaces.FastAccess, c.Workspaces.Count)
	}

	if _, err := menu.ParseKind(c.Picker.Kind); err != nil {
		invalid("picker.kind: %v", err)
	}

	for i, s := range append(append([]workspaces.Substitution{}, c.Substitutions.Names...), c.Substitutions.Titles...) {
		if s.Pattern == "" {
			invalid("substitution %d has an empty pattern", i)
		}
	}

	if c.Commands.Terminal == "" {
		invalid("commands.terminal is empty")
	}

	for name := range c.HostCommands {
		if !host.IsCommandName(name) {
			invalid("host_commands: unknown operation %q", name)
		}
	}

	for i, p := range c.Startup {
		if p.Program == "" {
			invalid("startup %d has an empty program", i)
		}
	}

	for name, screen := range map[string]BarScreen{"primary": c.Bar.Primary, "external": c.Bar.External} {
		if screen.PointSize <= 0 {
			invalid("bar.%s.point_size must be positive", name)
		}
		if screen.Height <= 0 {
			invalid("bar.%s.height must be positive", name)
		}
	}
	if c.Bar.SpacerFraction < 0 || c.Bar.SpacerFraction > 1 {
		invalid("bar.spacer_fraction must be between 0 and 1, got %v", c.Bar.SpacerFraction)
	}
	if c.Bar.MaxActiveWindowChars < 0 {
		invalid("bar.max_active_window_chars must not be negative")
	}
	for name, hex := range map[string]string{
		"foreground": c.Bar.Foreground,
		"background": c.Bar.Background,
		"highlight":  c.Bar.Highlight,
		"empty":      c.Bar.Empty,
	} {
		if !isHexColor(hex) {
			invalid("bar.%s: %q is not a #rrggbb color", name, hex)
		}
	}
	for name, interval := range map[string]string{
		"wifi":    c.Bar.Intervals.Wifi,
		"battery": c.Bar.Intervals.Battery,
		"volume":  c.Bar.Intervals.Volume,
		"clock":   c.Bar.Intervals.Clock,
	} {
		if d, err := time.ParseDuration(interval); err != nil || d <= 0 {
			invalid("bar.intervals.%s: %q is not a positive duration", name, interval)
		}
	}

	return errors.Join(errs...)
}

func isHexColor(s string) bool {
	s, ok := strings.CutPrefix(s, "#")
	if !ok || (len(s) != 6 && len(s) != 8) {
		return false
	}
	for _, r := range s {
		switch {
		case '0' <= r && r <= '9', 'a' <= r && r <= 'f', 'A' <= r && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// KeyOptions returns the options for keys.Build.
func (c Config) KeyOptions() keys.Options {
	return keys.Options{
		FastAccessWorkspaces: c.Workspaces.FastAccess,
		Terminal:             c.Commands.Terminal,
		Launcher:             c.Commands.Launcher,
		Locker:               c.Commands.Locker,
	}
}

// DisplayConfig returns the substitutions with the shell location rule
// appended to the title substitutions.
func (c Config) DisplayConfig(shellLocation string) workspaces.DisplayConfig {
	titles := append([]workspaces.Substitution{}, c.Substitutions.Titles...)
	if c.Substitutions.ShellLocation != "" && shellLocation != "" {
		titles = append(titles, workspaces.Substitution{
			Pattern:     shellLocation,
			Replacement: c.Substitutions.ShellLocation,
		})
	}

	return workspaces.DisplayConfig{
		NameSubstitutions:  append([]workspaces.Substitution{}, c.Substitutions.Names...),
		TitleSubstitutions: titles,
	}
}

// Interval parses a duration validated by Validate.
func Interval(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}

// LogPath expands the log file path against home.
func (c Config) LogPath(home string) string {
	return core.ExpandHome(c.LogFile, home)
}
