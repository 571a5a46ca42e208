// Package log constructs the worker's sole diagnostic channel: structured,
// stderr-only logging gated by the debug configuration flag. It never
// touches stdout, since that stream belongs entirely to the wire protocol.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to standard error. When debug is false, only
// Info-level-and-above records are emitted (effectively none, in normal
// operation); when true, per-command Debug records are also emitted.
func New(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
