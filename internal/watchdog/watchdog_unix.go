//go:build !windows

// Package watchdog implements the polling loop shared by both supervision
// stages. A watchdog owns exactly one child and watches exactly one ancestor;
// the loop decides, every cycle, whether to keep polling, mirror the child's
// exit, or tear the whole process group down because the ancestor is gone.
package watchdog

import (
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/Paintersrp/leash/internal/liveness"
	"github.com/Paintersrp/leash/internal/procgroup"
)

// pollInterval bounds both reaction latency and idle CPU cost. It is a
// deliberate constant, not a knob.
const pollInterval = 50 * time.Millisecond

// Config parameterises one watchdog instance. The outer and inner stages run
// the identical loop against different ancestors and children.
type Config struct {
	// Ancestor is the process whose death triggers group teardown. Captured
	// once, never re-resolved.
	Ancestor liveness.Identity

	// ChildPID is the single supervised child this watchdog reaps and mirrors.
	ChildPID int

	// GroupLeader marks the stage that leads the process group. A leader
	// must never signal the group it leads, so teardown becomes a no-op for
	// it; the non-leading stage below performs the actual cleanup.
	GroupLeader bool

	Log zerolog.Logger
}

// Run polls until a terminal condition and returns the process exit status:
// the child's translated status when the child ends, or 0 when the ancestor
// disappeared (cleanup, not failure) or no children remain.
//
// Within a cycle the ancestor check strictly precedes the child check, so a
// simultaneous ancestor death and child exit resolves in favour of cleanup
// and nothing is ever left unsupervised.
func Run(cfg Config) int {
	// A termination signal aimed at the watchdog itself must not take it
	// down abruptly and orphan the child; it is treated like ancestor death.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGTERM, unix.SIGINT)
	defer signal.Stop(sigCh)

	for {
		if !liveness.Alive(cfg.Ancestor) {
			cfg.Log.Info().Int("ancestor", cfg.Ancestor.PID).Msg("ancestor gone, tearing down group")
			terminateGroup(cfg)
			return 0
		}

		if status, done := checkChild(cfg); done {
			return status
		}

		if status, done := reapStrays(cfg); done {
			return status
		}

		select {
		case <-time.After(pollInterval):
		case sig := <-sigCh:
			cfg.Log.Info().Stringer("signal", sig).Msg("termination signal trapped, tearing down group")
			terminateGroup(cfg)
			return 0
		}
	}
}

func terminateGroup(cfg Config) {
	if cfg.GroupLeader {
		// Signalling the group we lead would signal ourselves mid-teardown.
		// The stage below notices our exit and performs the real cleanup.
		return
	}
	procgroup.Terminate(unix.Getpgrp(), procgroup.DefaultGrace, cfg.Log)
}

// checkChild performs the non-blocking wait for the supervised child.
func checkChild(cfg Config) (int, bool) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(cfg.ChildPID, &ws, unix.WNOHANG, nil)
	switch {
	case err == unix.EINTR:
		return 0, false
	case err == unix.ECHILD:
		// Lost track of our own child; nothing left to supervise.
		cfg.Log.Info().Int("child", cfg.ChildPID).Msg("child no longer ours")
		return 0, true
	case err != nil:
		cfg.Log.Error().Err(err).Int("child", cfg.ChildPID).Msg("wait for child")
		return 1, true
	case pid == cfg.ChildPID:
		status := exitStatus(ws)
		cfg.Log.Info().Int("child", cfg.ChildPID).Int("status", status).Msg("child exited")
		return status, true
	}
	return 0, false
}

// reapStrays drains every other terminated child so incidental processes
// never linger as zombies. If the drain happens to collect the supervised
// child first, its status is mirrored immediately.
func reapStrays(cfg Config) (int, bool) {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return 0, false
		}
		if pid == cfg.ChildPID {
			return exitStatus(ws), true
		}
		cfg.Log.Debug().Int("pid", pid).Msg("reaped stray child")
	}
}

// exitStatus translates a wait status into the [0,255] code this process
// propagates: the child's own code for a normal exit, 128+signal otherwise.
func exitStatus(ws unix.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return 128 + int(ws.Signal())
	}
	return 1
}
