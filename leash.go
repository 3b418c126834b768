//go:build !windows

// Package leash is a drop-in replacement for os/exec that guarantees
// subprocesses terminate when their parent does.
//
// Commands built here run behind a small supervision chain: the calling
// binary is re-executed into a launcher that leads a fresh process group and
// an intermediate stage beneath it, each polling its own ancestor for
// liveness. When the caller dies, whichever layer notices first tears the
// whole group down, graceful signal first, forced kill after a short grace
// interval. The wrapped command's exit status passes through unchanged.
//
// The re-execution requires a hook at the top of the consumer's main:
//
//	func main() {
//		if reexec.Init() {
//			return
//		}
//		// ...
//	}
//
// using github.com/docker/docker/pkg/reexec.
package leash

import (
	"context"
	"os/exec"

	"github.com/Paintersrp/leash/internal/supervise"
)

type Cmd = exec.Cmd
type Error = exec.Error
type ExitError = exec.ExitError

var (
	ErrDot       = exec.ErrDot
	ErrNotFound  = exec.ErrNotFound
	ErrWaitDelay = exec.ErrWaitDelay
)

// Command returns a Cmd that runs the named program under supervision.
// It behaves like exec.Command in every other respect: PATH resolution for
// the program, and the Cmd's stdio, Env and Dir apply to the whole chain and
// are inherited by the program.
func Command(name string, arg ...string) *Cmd {
	return CommandContext(context.Background(), name, arg...)
}

// CommandContext is like Command but kills the supervision chain when the
// context is done; the chain then takes the program and its descendants down
// with it.
func CommandContext(ctx context.Context, name string, arg ...string) *Cmd {
	return supervise.Command(ctx, name, arg...)
}

// LookPath is exec.LookPath.
func LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
