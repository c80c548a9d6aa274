package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger returns a console logger on w. Verbose runs log at debug
// level, others only warnings and errors.
func newLogger(w io.Writer, verbose, noColor bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}
