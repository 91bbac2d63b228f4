// Package logging provides Plume's logging infrastructure built on charmbracelet/log.
//
// It wraps charmbracelet/log in a small factory that hands out component-prefixed
// loggers with shared level and formatter settings. All log output goes to stderr;
// stdout is reserved for structured output (pipeline summaries, gap tables, JSON).
//
// Usage:
//
//	// During CLI initialization (PersistentPreRun):
//	logging.Setup(verbose, quiet, jsonFormat)
//
//	// In each package:
//	logger := logging.New("pipeline")
//	logger.Info("phase complete", "state", "DRAFTING")
//
// Setup must be called before New: charmbracelet/log child loggers copy state
// at creation time, so later changes to the default logger do not propagate to
// children that already exist.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level aliases re-exported so consumers do not need to import
// charmbracelet/log directly.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// Setup configures the global logging defaults. Call once during CLI
// initialization.
//
//   - verbose: Debug level plus caller reporting
//   - quiet: Error level only
//   - jsonFormat: NDJSON formatter for CI and log aggregation
//
// If both verbose and quiet are set, quiet wins so that --quiet always
// suppresses noise in scripted environments.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetReportCaller(verbose && !quiet)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix. The returned logger
// inherits global level and output settings from the default logger at
// creation time; an empty component produces a logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the output writer for the default logger. Primarily
// useful in tests, where output is captured with a bytes.Buffer and restored
// via t.Cleanup.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
