// Package logger provides verbose logging for the hisforms CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are written to stderr to help users follow requests to the backend.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	log               = build(os.Stderr, false)
)

func build(w io.Writer, asJSON bool) zerolog.Logger {
	if asJSON {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	})
}

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

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build(output, jsonOut)
}

// SetJSON switches between console and JSON lines output.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = v
	log = build(output, jsonOut)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Debug().Msgf(format, args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Debug().Str("section", name).Msg("===")
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Info().Msgf(format, args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.Warn().Msgf(format, args...)
	}
}

// Request logs one backend round trip if verbose mode is enabled.
func Request(requestID, method, url string, status int, latency time.Duration, err error) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	evt := log.Debug()
	if err != nil {
		evt = log.Warn().Err(err)
	}
	evt.
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Int("status", status).
		Dur("latency", latency).
		Msg("request")
}
