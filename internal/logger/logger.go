// Package logger provides verbose logging for the document viewer.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace the conversion pipeline. Errors are
// always printed.
//
// Long-running processes such as serve enable timestamps so interleaved
// worker output can be ordered.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TimeFormat is the timestamp layout used when timestamps are enabled.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes every line with the current time when enabled.
func SetTimestamps(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = enabled
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug traces pipeline steps such as cache hits and skipped events.
func Debug(format string, args ...any) {
	printf(false, "DEBUG", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info reports lifecycle events: conversions committed, servers started.
func Info(format string, args ...any) {
	printf(false, "INFO", format, args...)
}

// Warn reports degraded results that do not fail the operation,
// such as a conversion stored without a catalog.
func Warn(format string, args ...any) {
	printf(false, "WARN", format, args...)
}

// Error prints an error message regardless of verbose mode.
// Used by background workers whose failures have no caller to return to.
func Error(format string, args ...any) {
	printf(true, "ERROR", format, args...)
}

func printf(always bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if timestamps {
		fmt.Fprintf(output, "%s [%s] %s\n", now().Format(TimeFormat), level, msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}
