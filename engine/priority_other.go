//go:build !linux

package engine

import "golang.org/x/sys/unix"

// defaultSetRTPriority falls back to a process-nice adjustment on
// platforms without SCHED_FIFO support through golang.org/x/sys/unix's
// raw syscall table (see priority.go for the Linux path).
func defaultSetRTPriority(tag string, priority int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, -priority)
}
