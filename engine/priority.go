//go:build linux

package engine

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// schedFIFO mirrors the Linux SCHED_FIFO policy constant; there is no
// wrapper for sched_setscheduler(2) in golang.org/x/sys/unix, so the
// default setter reaches for the raw syscall the same way the teacher
// pack reaches for raw ioctls (golang.org/x/sys/unix.IoctlHIDGetRawInfo)
// where the stdlib has no equivalent.
const schedFIFO = 1

type schedParam struct {
	priority int32
}

// defaultSetRTPriority raises the calling OS thread to SCHED_FIFO at
// the given priority. It is installed by Activate whenever the host
// does not supply its own RTPrioritySetter. Failure (most commonly:
// insufficient privilege) is non-fatal; the worker keeps running at
// whatever priority it already had.
func defaultSetRTPriority(tag string, priority int) error {
	param := schedParam{priority: int32(priority)}
	// pid 0 means "the calling thread" for sched_setscheduler(2).
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, 0, uintptr(schedFIFO), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return errno
	}
	return nil
}
