// Package sysenv reads the user's environment once at startup.
package sysenv

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

const Unknown = "Unknown"

type Env struct {
	Home     string
	Hostname string
	Username string
}

// Lookup is os.LookupEnv.
type Lookup func(key string) (string, bool)

// HostnameCommand runs `hostname`.
type HostnameCommand func(ctx context.Context) (string, error)

func RunHostname(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "hostname").Output()
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(out)), nil
}

func Load(ctx context.Context) Env {
	return load(ctx, os.LookupEnv, RunHostname)
}

func load(ctx context.Context, lookup Lookup, hostname HostnameCommand) Env {
	env := Env{
		Home:     Unknown,
		Hostname: Unknown,
		Username: Unknown,
	}

	if home, ok := lookup("HOME"); ok && home != "" {
		env.Home = home
	} else if home, err := os.UserHomeDir(); err == nil {
		env.Home = home
	}

	if host, ok := lookup("HOSTNAME"); ok && host != "" {
		env.Hostname = host
	} else if host, err := hostname(ctx); err == nil && host != "" {
		env.Hostname = host
	}

	if user, ok := lookup("USER"); ok && user != "" {
		env.Username = user
	}

	return env
}

// ShellLocation is the "user@host:" prefix shells put in terminal titles.
func (e Env) ShellLocation() string {
	return e.Username + "@" + e.Hostname + ":"
}

func InPath(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}
