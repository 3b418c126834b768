//go:build !windows

package procgroup

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// DefaultGrace is how long a group gets to act on SIGTERM before SIGKILL.
const DefaultGrace = 100 * time.Millisecond

// Establish makes the calling process the leader of a fresh process group.
// Every process it subsequently spawns inherits membership, so a single
// group-wide signal later reaches the whole supervision tree.
func Establish() error {
	if err := unix.Setpgid(0, 0); err != nil {
		return fmt.Errorf("create process group: %w", err)
	}
	return nil
}

// Terminate tears down an entire process group: SIGTERM to every member,
// a grace interval for well-behaved processes to exit cleanly, then SIGKILL
// for whatever is left. It always runs both phases and always returns; a
// group that has already fully exited is not an error.
//
// Callers that lead the group they would be signalling must not invoke
// Terminate: the graceful phase would reach the caller itself.
func Terminate(pgid int, grace time.Duration, log zerolog.Logger) {
	signalGroup(pgid, unix.SIGTERM, log)
	time.Sleep(grace)
	signalGroup(pgid, unix.SIGKILL, log)
}

func signalGroup(pgid int, sig unix.Signal, log zerolog.Logger) {
	if err := unix.Kill(-pgid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			// Group already gone.
			return
		}
		log.Warn().Err(err).Int("pgid", pgid).Stringer("signal", sig).Msg("signal process group")
		return
	}
	log.Debug().Int("pgid", pgid).Stringer("signal", sig).Msg("signalled process group")
}
