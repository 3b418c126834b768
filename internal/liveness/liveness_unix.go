//go:build !windows

package liveness

import (
	"errors"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// Identity pins down a process well enough to survive pid reuse. The pid is
// captured exactly once and never re-resolved; the start time disambiguates an
// unrelated process that later inherits the same pid. A zero StartTime means
// the platform would not report one and probing degrades to the pid alone.
type Identity struct {
	PID       int
	StartTime int64
}

// Capture records the identity of pid. It never fails: a process whose start
// time cannot be read is still watchable, just without reuse protection.
func Capture(pid int) Identity {
	id := Identity{PID: pid}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return id
	}
	if created, err := proc.CreateTime(); err == nil {
		id.StartTime = created
	}
	return id
}

// Alive probes the identified process with the null signal. Nothing is
// delivered; the kernel only reports whether the pid exists. EPERM means the
// process exists but belongs to someone else, which still counts as alive.
func Alive(id Identity) bool {
	if err := unix.Kill(id.PID, 0); err != nil {
		return errors.Is(err, unix.EPERM)
	}
	if id.StartTime == 0 {
		return true
	}
	proc, err := process.NewProcess(int32(id.PID))
	if err != nil {
		// Raced with process exit between the probe and the lookup.
		return false
	}
	created, err := proc.CreateTime()
	if err != nil {
		return true
	}
	return created == id.StartTime
}
