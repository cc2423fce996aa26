package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ItsNotGoodName/x-dotwm/internal/bar"
	"github.com/ItsNotGoodName/x-dotwm/internal/config"
)

// Sources are the system texts on the right of the bar.
type Sources struct {
	Wifi    bar.TextSource
	Battery bar.TextSource
	Volume  bar.TextSource
	Clock   bar.TextSource
}

func DefaultSources(cfg config.Bar) Sources {
	return Sources{
		Wifi:    bar.WifiNetwork(bar.ExecOutput),
		Battery: bar.BatterySummary(bar.PowerSupplyDir, BatteryName(cfg.Battery, bar.PowerSupplyDir)),
		Volume:  bar.AmixerVolume(bar.ExecOutput, cfg.VolumeChannel),
		Clock:   bar.CurrentDateAndTime(time.Now),
	}
}

// BatteryName is name, or the first battery found under dir, or
// bar.DefaultBattery.
func BatteryName(name, dir string) string {
	if name != "" {
		return name
	}
	if found, ok := bar.BatteryFileSearch(dir); ok {
		return found
	}
	return bar.DefaultBattery
}

type palette struct {
	fg        bar.Color
	bg        bar.Color
	highlight bar.Color
	empty     bar.Color
}

func parsePalette(cfg config.Bar) (palette, error) {
	var p palette
	var errs []error
	for _, c := range []struct {
		dst *bar.Color
		hex string
	}{
		{&p.fg, cfg.Foreground},
		{&p.bg, cfg.Background},
		{&p.highlight, cfg.Highlight},
		{&p.empty, cfg.Empty},
	} {
		color, err := bar.ParseColor(c.hex)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*c.dst = color
	}
	return p, errors.Join(errs...)
}

// NewStatusBar builds the bar of every screen. The primary screen reserves
// space on the right for a system tray.
func NewStatusBar(cfg config.Bar, sources Sources, loadFace bar.FaceLoader) (*bar.StatusBar, error) {
	p, err := parsePalette(cfg)
	if err != nil {
		return nil, err
	}

	spacer, err := bar.NewSpacer(cfg.SpacerFraction)
	if err != nil {
		return nil, err
	}

	primary := append(baseWidgets(cfg, p, sources), spacer)
	external := baseWidgets(cfg, p, sources)

	sb, err := bar.New(p.bg, cfg.Font, []bar.PerScreen{
		{PointSize: cfg.Primary.PointSize, Height: cfg.Primary.Height, Widgets: primary},
		{PointSize: cfg.External.PointSize, Height: cfg.External.Height, Widgets: external},
	}, loadFace)
	if err != nil {
		return nil, fmt.Errorf("status bar: %w", err)
	}

	return sb, nil
}

func baseWidgets(cfg config.Bar, p palette, sources Sources) []bar.Widget {
	style := bar.TextStyle{FG: p.fg, BG: p.bg, PaddingLeft: 2, PaddingRight: 2}
	pstyle := style
	pstyle.PaddingLeft, pstyle.PaddingRight = 5, 5
	active := style
	active.BG, active.PaddingLeft, active.PaddingRight = p.highlight, 6, 4

	icons := make([]bar.IconRule, len(cfg.Icons))
	for i, rule := range cfg.Icons {
		icons[i] = bar.IconRule{Process: rule.Process, Icon: rule.Icon}
	}
	ui := bar.NewAppWorkspaceUI(bar.AppWorkspaceUIColors{
		FG:        p.fg,
		BG:        p.bg,
		Highlight: p.highlight,
		Empty:     p.empty,
	}, icons)

	return []bar.Widget{
		bar.NewWedgeStart(p.highlight, p.bg),
		bar.NewWorkspaces(ui, style.PaddingLeft),
		bar.NewWedgeEnd(p.highlight, p.bg).OnlyWithFocus(),
		bar.NewActiveWindowName(cfg.MaxActiveWindowChars, active, true, false),
		bar.NewWedgeStart(p.highlight, p.bg).OnlyWithFocus(),
		bar.NewIntervalText("wifi", pstyle, sources.Wifi, config.Interval(cfg.Intervals.Wifi)),
		bar.NewIntervalText("battery", pstyle, sources.Battery, config.Interval(cfg.Intervals.Battery)),
		bar.NewIntervalText("volume", pstyle, sources.Volume, config.Interval(cfg.Intervals.Volume)),
		bar.NewIntervalText("clock", pstyle, sources.Clock, config.Interval(cfg.Intervals.Clock)),
	}
}
