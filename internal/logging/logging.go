// Package logging configures the optional debug side channel. Supervision
// never depends on it: unless LEASH_DEBUG is set truthy every logger is a
// no-op, and output only ever goes to stderr so the supervised command's
// stdout stays untouched.
package logging

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns the logger for a supervision stage. The role and pid are
// attached to every entry so interleaved output from the nested stages can
// be told apart.
func New(role string) zerolog.Logger {
	if !enabled() {
		return zerolog.Nop()
	}

	var w io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(w).With().
		Timestamp().
		Str("role", role).
		Int("pid", os.Getpid()).
		Logger()
}

func enabled() bool {
	ok, err := strconv.ParseBool(os.Getenv("LEASH_DEBUG"))
	return err == nil && ok
}
