// Package cli holds helpers shared by the wrangle commands.
package cli

import (
	"flag"
	"log/slog"
	"os"
)

// SetupLogging installs the process logger on stderr, keeping stdout free
// for piped data. Quiet wins over verbose.
func SetupLogging(verbose, quiet bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Explicit returns the names of the flags actually set on the command
// line, letting flag values override a config file only when the user
// typed them.
func Explicit(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
