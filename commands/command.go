package commands

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

const APP = "sales-report"

// Options are the global command line options, shared by all subcommands.
type Options struct {
	Config string
	Debug  bool
}

// Command is the interface implemented by all CLI subcommands.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(args ...any) error
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-12s %s\n", f.Name, f.Usage)
	})
}

// newLogger builds the application logger for a command.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}

// logTee is a writer that discards until a run log file is attached.
// Configuration resolves after logging starts, so the run log location is
// only known mid-run.
type logTee struct {
	mu   sync.Mutex
	file *os.File
}

func (t *logTee) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		t.file.Write(p)
	}

	return len(p), nil
}

func (t *logTee) Attach(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0660)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.file = f

	return nil
}

func (t *logTee) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		t.file.Close()
		t.file = nil
	}
}
