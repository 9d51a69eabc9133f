package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Verbose levels accepted by --verbose-level.
const (
	verboseNone = iota
	verboseSummary
	verboseFull
)

// newLogger builds the diagnostics logger. Diagnostics always go to w (stderr in
// production) and follow the verbose level: errors only, warnings, or info.
func newLogger(w io.Writer, verbose int) *slog.Logger {
	level := slog.LevelInfo
	switch verbose {
	case verboseNone:
		level = slog.LevelError
	case verboseSummary:
		level = slog.LevelWarn
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
}

// reporter prints the user facing progress lines on stdout.
type reporter struct {
	w       io.Writer
	verbose int
}

// progress prints a per-file or per-phase line, shown only at full verbosity.
func (r reporter) progress(format string, args ...any) {
	if r.verbose >= verboseFull {
		fmt.Fprintf(r.w, "=> "+format+"\n", args...)
	}
}

// notice prints a line regardless of the verbose level.
func (r reporter) notice(format string, args ...any) {
	fmt.Fprintf(r.w, "=> "+format+"\n", args...)
}

func (r reporter) summary(s *Summary) {
	if r.verbose >= verboseSummary {
		s.Print(r.w)
	}
}
