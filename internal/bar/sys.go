package bar

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

const (
	PowerSupplyDir = "/sys/class/power_supply"
	DefaultBattery = "BAT1"
)

// CommandOutput runs name and returns its standard output.
type CommandOutput func(ctx context.Context, name string, args ...string) ([]byte, error)

func ExecOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// WifiNetwork shows the ESSID of the connected network.
func WifiNetwork(run CommandOutput) TextSource {
	return func(ctx context.Context) (string, error) {
		out, err := run(ctx, "iwgetid", "-r")
		if err != nil {
			// iwgetid exits 255 when not connected
			return "wifi: off", nil
		}

		essid := string(bytes.TrimSpace(out))
		if essid == "" {
			return "wifi: off", nil
		}
		return "wifi: " + essid, nil
	}
}

// BatteryFileSearch returns the name of the first battery under dir.
func BatteryFileSearch(dir string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, "BAT*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return filepath.Base(matches[0]), true
}

// BatterySummary shows the charge of battery under dir and whether it is charging.
func BatterySummary(dir, battery string) TextSource {
	return func(ctx context.Context) (string, error) {
		status, err := readSysFile(dir, battery, "status")
		if err != nil {
			return "", err
		}
		capacity, err := readSysFile(dir, battery, "capacity")
		if err != nil {
			return "", err
		}

		charge, err := strconv.Atoi(capacity)
		if err != nil {
			return "", fmt.Errorf("invalid capacity %q: %w", capacity, err)
		}

		switch status {
		case "Charging":
			return fmt.Sprintf("bat: %d%%+", charge), nil
		case "Full":
			return "bat: full", nil
		default:
			return fmt.Sprintf("bat: %d%%", charge), nil
		}
	}
}

func readSysFile(dir, battery, name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, battery, name))
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(b)), nil
}

var amixerLevel = regexp.MustCompile(`\[(\d+)%\](?:.*\[(on|off)\])?`)

// AmixerVolume shows the volume of channel.
func AmixerVolume(run CommandOutput, channel string) TextSource {
	return func(ctx context.Context) (string, error) {
		out, err := run(ctx, "amixer", "get", channel)
		if err != nil {
			return "", err
		}
		return ParseAmixer(out)
	}
}

// ParseAmixer reads the level of the last channel in `amixer get` output.
func ParseAmixer(out []byte) (string, error) {
	var match []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if m := amixerLevel.FindStringSubmatch(scanner.Text()); m != nil {
			match = m
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if match == nil {
		return "", errors.New("no volume in amixer output")
	}

	if match[2] == "off" {
		return "vol: muted", nil
	}
	return "vol: " + match[1] + "%", nil
}

// CurrentDateAndTime shows the local time in the format of `date "+%F %R"`.
func CurrentDateAndTime(now func() time.Time) TextSource {
	return func(context.Context) (string, error) {
		return now().Format("2006-01-02 15:04"), nil
	}
}
