package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// File is an append-only log file. Write never fails; errors are reported to
// Stderr instead.
type File struct {
	mu     sync.Mutex
	path   string
	Stderr io.Writer
}

func NewFile(path string) *File {
	return &File{
		path:   path,
		Stderr: os.Stderr,
	}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.append(p); err != nil {
		fmt.Fprintf(f.Stderr, "Couldn't log %q\nDue to error %v\n", p, err)
	}

	return len(p), nil
}

// append opens the file on every write so an external rotation or deletion
// never loses lines.
func (f *File) append(p []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	_, err = file.Write(p)
	return errors.Join(err, file.Close())
}

// Tee sends every record to all handlers.
type Tee []slog.Handler

func (t Tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t Tee) Handle(ctx context.Context, r slog.Record) error {
	var err error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			err = errors.Join(err, h.Handle(ctx, r.Clone()))
		}
	}
	return err
}

func (t Tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make(Tee, len(t))
	for i, h := range t {
		handlers[i] = h.WithAttrs(attrs)
	}
	return handlers
}

func (t Tee) WithGroup(name string) slog.Handler {
	handlers := make(Tee, len(t))
	for i, h := range t {
		handlers[i] = h.WithGroup(name)
	}
	return handlers
}

// LogErr logs err with msg and reports whether v is usable.
func LogErr[T any](v T, err error, msg string) (T, bool) {
	if err != nil {
		slog.Warn(msg, "error", err)
		return v, false
	}
	return v, true
}

// LogMissing logs msg when ok is false.
func LogMissing[T any](v T, ok bool, msg string) (T, bool) {
	if !ok {
		slog.Warn(msg + ": none when some expected")
	}
	return v, ok
}
