// Package diag builds the diagnostic logger: plain console lines suitable
// for a serial monitor.
package diag

import (
	"io"

	"github.com/rs/zerolog"
)

// TimeFormat keeps lines short on narrow serial monitors.
const TimeFormat = "15:04:05.000"

// New returns a logger writing human-readable lines to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: TimeFormat}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component tags every line of logger with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
