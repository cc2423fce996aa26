package procs

import (
	"context"
	"errors"
	"testing"
)

func fakeLister(records ...ProcessRecord) Lister {
	return func(ctx context.Context) ([]ProcessRecord, error) {
		return records, nil
	}
}

func TestTable_ExeName(t *testing.T) {
	table := NewTable(fakeLister(
		ProcessRecord{PID: 10, Name: "chromium", Exe: "/usr/lib/chromium/chromium", HasExe: true},
		ProcessRecord{PID: 11, Name: "kworker"},
	))
	if err := table.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		pid    int32
		want   string
		wantOK bool
	}{
		{10, "chromium", true},
		{11, UnknownExe, true},
		{12, "", false},
	}

	for _, tt := range tests {
		got, ok := table.ExeName(tt.pid)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExeName(%d): got (%q, %v), want (%q, %v)", tt.pid, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTable_RefreshKeepsSnapshotOnError(t *testing.T) {
	fail := false
	table := NewTable(func(ctx context.Context) ([]ProcessRecord, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []ProcessRecord{{PID: 1, Name: "init"}}, nil
	})

	if err := table.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	fail = true
	if err := table.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if table.Len() != 1 {
		t.Errorf("Len: got %d, want 1", table.Len())
	}
}

func TestTable_Running(t *testing.T) {
	table := NewTable(fakeLister(
		ProcessRecord{PID: 20, Name: "spotify", Exe: "/opt/spotify/spotify", HasExe: true},
	))
	if err := table.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !table.Running("spotify") {
		t.Error("expected spotify to be running")
	}
	if table.Running("xscreensaver") {
		t.Error("expected xscreensaver to not be running")
	}
	if table.Running("") {
		t.Error("empty program should never match")
	}
}
