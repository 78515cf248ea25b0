// Package logging builds the zerolog.Logger shared by the CLI shell and
// every internal package.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a zerolog.Logger at level. Interactive runs (a terminal
// attached to stderr) get a human-readable console writer; anything
// else (piped output, a background job) gets plain JSON lines, so the
// capsule tool behaves the same whether run by hand or from a script.
func New(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	var writer = io.Writer(os.Stderr)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}
