// Package procs keeps a snapshot of the OS process table.
package procs

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// UnknownExe is the name used for processes whose executable path is unreadable.
const UnknownExe = "Unknown"

type ProcessRecord struct {
	PID  int32
	Name string
	Exe  string
	// HasExe is false when the executable path could not be read.
	HasExe bool
}

// Lister scans every process on the system.
type Lister func(ctx context.Context) ([]ProcessRecord, error)

// Scan lists processes with gopsutil.
func Scan(ctx context.Context) ([]ProcessRecord, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]ProcessRecord, 0, len(ps))
	for _, p := range ps {
		record := ProcessRecord{PID: p.Pid}
		if name, err := p.NameWithContext(ctx); err == nil {
			record.Name = name
		}
		if exe, err := p.ExeWithContext(ctx); err == nil && exe != "" {
			record.Exe = exe
			record.HasExe = true
		}
		records = append(records, record)
	}

	return records, nil
}

// Table is a pid indexed snapshot. It only changes on Refresh.
type Table struct {
	lister  Lister
	records map[int32]ProcessRecord
}

func NewTable(lister Lister) *Table {
	if lister == nil {
		lister = Scan
	}
	return &Table{
		lister:  lister,
		records: make(map[int32]ProcessRecord),
	}
}

// Refresh replaces the snapshot. On error the previous snapshot is kept.
func (t *Table) Refresh(ctx context.Context) error {
	records, err := t.lister(ctx)
	if err != nil {
		return err
	}

	snapshot := make(map[int32]ProcessRecord, len(records))
	for _, r := range records {
		snapshot[r.PID] = r
	}
	t.records = snapshot

	slog.Debug("Refreshed process table", "package", "procs", "count", len(snapshot))

	return nil
}

func (t *Table) Lookup(pid int32) (ProcessRecord, bool) {
	r, ok := t.records[pid]
	return r, ok
}

func (t *Table) Len() int {
	return len(t.records)
}

// ExeName returns the last path segment of the executable of pid.
func (t *Table) ExeName(pid int32) (string, bool) {
	r, ok := t.records[pid]
	if !ok {
		return "", false
	}
	if !r.HasExe {
		return UnknownExe, true
	}
	return filepath.Base(r.Exe), true
}

// Running reports whether any process name or executable contains program.
func (t *Table) Running(program string) bool {
	if program == "" {
		return false
	}
	for _, r := range t.records {
		if strings.Contains(r.Name, program) || strings.Contains(r.Exe, program) {
			return true
		}
	}
	return false
}
