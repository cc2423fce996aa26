package config

import (
	"github.com/ItsNotGoodName/x-dotwm/internal/menu"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
)

// Kanagawa, https://github.com/rebelot/kanagawa.nvim#color-palette
const (
	ColorBlack = "#252535"
	ColorWhite = "#dcd7ba"
	ColorGrey  = "#363646"
	ColorBlue  = "#658594"
	ColorRed   = "#C34043"
)

func DefaultConfig() Config {
	return Config{
		LogFile: "~/.x-dotwm.log",
		Workspaces: Workspaces{
			Count:      29,
			FastAccess: 9,
		},
		Picker: Picker{
			Kind:            string(menu.KindDMenu),
			WorkspacePrompt: "workspace> ",
			SendToPrompt:    "send to> ",
			Style: menu.Style{
				NormalBG:   ColorBlack,
				NormalFG:   ColorWhite,
				SelectedBG: ColorBlue,
				SelectedFG: ColorWhite,
			},
		},
		Substitutions: Substitutions{
			Names: []workspaces.Substitution{
				{Pattern: "-wrapped", Replacement: ""},
				{Pattern: ".", Replacement: ""},
			},
			Titles:        []workspaces.Substitution{},
			ShellLocation: "local",
		},
		Commands: Commands{
			Terminal: "alacritty",
			Launcher: "dmenu_run",
			Locker:   "xscreensaver-command -lock",
		},
		HostCommands: map[string]string{},
		Startup: []StartupProgram{
			{Program: "xscreensaver"},
			{Program: "nvidia-settings", Args: "--load-config-only"},
		},
		Bar: Bar{
			Font:       "",
			Foreground: ColorWhite,
			Background: ColorBlack,
			Highlight:  ColorBlue,
			Empty:      ColorGrey,
			Primary: BarScreen{
				PointSize: 12,
				Height:    24,
			},
			External: BarScreen{
				PointSize: 8,
				Height:    18,
			},
			SpacerFraction:       0.07,
			MaxActiveWindowChars: 50,
			Icons: []IconRule{
				{Process: "spotify", Icon: "🎵"},
			},
			Battery:       "",
			VolumeChannel: "Master",
			Intervals: Intervals{
				Wifi:    "10s",
				Battery: "60s",
				Volume:  "1s",
				Clock:   "10s",
			},
		},
	}
}

type Config struct {
	LogFile       string            `json:"log_file" yaml:"log_file"`
	Workspaces    Workspaces        `json:"workspaces" yaml:"workspaces"`
	Picker        Picker            `json:"picker" yaml:"picker"`
	Substitutions Substitutions     `json:"substitutions" yaml:"substitutions"`
	Commands      Commands          `json:"commands" yaml:"commands"`
	HostCommands  map[string]string `json:"host_commands" yaml:"host_commands"` // keyed by host.ModifyOp or host.LayoutMessage name
	Startup       []StartupProgram  `json:"startup" yaml:"startup"`
	Bar           Bar               `json:"bar" yaml:"bar"`
}

type Workspaces struct {
	Count      int `json:"count" yaml:"count"`
	FastAccess int `json:"fast_access" yaml:"fast_access"`
}

type Picker struct {
	Kind            string     `json:"kind" yaml:"kind"` // [dmenu, rofi]
	WorkspacePrompt string     `json:"workspace_prompt" yaml:"workspace_prompt"`
	SendToPrompt    string     `json:"send_to_prompt" yaml:"send_to_prompt"`
	Style           menu.Style `json:"style" yaml:"style"`
}

type Substitutions struct {
	Names  []workspaces.Substitution `json:"names" yaml:"names"`
	Titles []workspaces.Substitution `json:"titles" yaml:"titles"`
	// ShellLocation replaces "user@host:" in titles when not empty.
	ShellLocation string `json:"shell_location" yaml:"shell_location"`
}

type Commands struct {
	Terminal string `json:"terminal" yaml:"terminal"`
	Launcher string `json:"launcher" yaml:"launcher"`
	Locker   string `json:"locker" yaml:"locker"`
}

type StartupProgram struct {
	Program string `json:"program" yaml:"program"`
	Args    string `json:"args" yaml:"args"`
}

type Bar struct {
	// Font is a path to a TTF/OTF file, the built-in bitmap font is used when empty.
	Font                 string     `json:"font" yaml:"font"`
	Foreground           string     `json:"foreground" yaml:"foreground"`
	Background           string     `json:"background" yaml:"background"`
	Highlight            string     `json:"highlight" yaml:"highlight"`
	Empty                string     `json:"empty" yaml:"empty"`
	Primary              BarScreen  `json:"primary" yaml:"primary"`
	External             BarScreen  `json:"external" yaml:"external"`
	SpacerFraction       float64    `json:"spacer_fraction" yaml:"spacer_fraction"`
	MaxActiveWindowChars int        `json:"max_active_window_chars" yaml:"max_active_window_chars"`
	Icons                []IconRule `json:"icons" yaml:"icons"`
	// Battery is the power supply name, discovered when empty.
	Battery       string    `json:"battery" yaml:"battery"`
	VolumeChannel string    `json:"volume_channel" yaml:"volume_channel"`
	Intervals     Intervals `json:"intervals" yaml:"intervals"`
}

type BarScreen struct {
	PointSize float64 `json:"point_size" yaml:"point_size"`
	Height    int     `json:"height" yaml:"height"`
}

type IconRule struct {
	Process string `json:"process" yaml:"process"`
	Icon    string `json:"icon" yaml:"icon"`
}

// Intervals are Go duration strings.
type Intervals struct {
	Wifi    string `json:"wifi" yaml:"wifi"`
	Battery string `json:"battery" yaml:"battery"`
	Volume  string `json:"volume" yaml:"volume"`
	Clock   string `json:"clock" yaml:"clock"`
}
