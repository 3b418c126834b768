//go:build !windows

// Package supervise wires the three-process supervision chain together.
//
// Go cannot fork, so each level of the chain is a re-execution of the current
// binary into a registered stage, the same process tree the classic
// double-fork produces:
//
//	parent → launcher (group leader, outer watchdog)
//	           → intermediate (inner watchdog)
//	               → target command
//
// Both watchdogs run the identical loop against different ancestors, so the
// parent's death propagates inward even if one layer has already been torn
// down or reaped oddly.
package supervise

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/docker/docker/pkg/reexec"

	"github.com/Paintersrp/leash/internal/liveness"
	"github.com/Paintersrp/leash/internal/logging"
	"github.com/Paintersrp/leash/internal/procgroup"
	"github.com/Paintersrp/leash/internal/watchdog"
)

const (
	launcherStage     = "leash-launcher"
	intermediateStage = "leash-intermediate"

	// argSeparator splits the intermediate's own arguments from the target
	// command's argv, which passes through untouched.
	argSeparator = "--"
)

func init() {
	reexec.Register(launcherStage, func() {
		os.Exit(RunLauncher(os.Args[1:]))
	})
	reexec.Register(intermediateStage, func() {
		os.Exit(RunIntermediate(os.Args[1:]))
	})
}

// Command returns a command that runs name under the full supervision chain
// by re-executing the calling binary into the launcher stage. The caller's
// main must have invoked reexec.Init.
func Command(ctx context.Context, name string, arg ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, reexec.Self())
	cmd.Args = append([]string{launcherStage, name}, arg...)
	return cmd
}

// RunLauncher is the outermost stage: it establishes the process group,
// spawns the intermediate stage into it and then watches the original
// parent, mirroring the intermediate's exit status.
func RunLauncher(argv []string) int {
	log := logging.New("launcher")

	// Capture the parent's identity before anything else; it is never
	// re-resolved.
	ancestor := liveness.Capture(os.Getppid())

	if err := procgroup.Establish(); err != nil {
		fmt.Fprintln(os.Stderr, "leash:", err)
		return 1
	}

	self := liveness.Capture(os.Getpid())
	args := []string{
		intermediateStage,
		strconv.Itoa(self.PID),
		strconv.FormatInt(self.StartTime, 10),
		argSeparator,
	}
	args = append(args, argv...)

	cmd := reexec.Command(args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "leash:", err)
		return 1
	}

	log.Info().
		Int("ancestor", ancestor.PID).
		Int("intermediate", cmd.Process.Pid).
		Strs("argv", argv).
		Msg("supervision chain started")

	return watchdog.Run(watchdog.Config{
		Ancestor:    ancestor,
		ChildPID:    cmd.Process.Pid,
		GroupLeader: true,
		Log:         log,
	})
}

// RunIntermediate is the inner stage: it spawns the target command with
// inherited stdio, stays in the launcher's process group and watches the
// launcher, mirroring the target's exit status.
func RunIntermediate(args []string) int {
	log := logging.New("intermediate")

	ancestor, argv, err := parseIntermediateArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "leash:", err)
		return 1
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		// Covers command-not-found and not-executable; the failure is
		// collapsed to a plain status 1 for the stage above.
		fmt.Fprintln(os.Stderr, "leash:", err)
		return 1
	}

	log.Info().
		Int("ancestor", ancestor.PID).
		Int("target", cmd.Process.Pid).
		Msg("target started")

	return watchdog.Run(watchdog.Config{
		Ancestor:    ancestor,
		ChildPID:    cmd.Process.Pid,
		GroupLeader: false,
		Log:         log,
	})
}

func parseIntermediateArgs(args []string) (liveness.Identity, []string, error) {
	if len(args) < 4 || args[2] != argSeparator {
		return liveness.Identity{}, nil, fmt.Errorf("malformed intermediate invocation: %q", args)
	}

	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return liveness.Identity{}, nil, fmt.Errorf("parse watched pid: %w", err)
	}
	start, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return liveness.Identity{}, nil, fmt.Errorf("parse watched start time: %w", err)
	}

	return liveness.Identity{PID: pid, StartTime: start}, args[3:], nil
}
