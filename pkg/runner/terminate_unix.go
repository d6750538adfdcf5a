//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcAttrs makes the child its own process-group leader so the whole
// tree it may create (codex spawns tool subprocesses) can be signaled
// together.
func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateTree terminates the child's process group: SIGTERM first, then
// SIGKILL if exited has not closed within the grace window. Idempotent — a
// group that is already gone is a no-op. A nil exited channel skips straight
// through the grace window to SIGKILL.
func terminateTree(pid int, grace time.Duration, exited <-chan struct{}) {
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		// Process already reaped.
		return
	}

	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		// ESRCH: group already gone.
		return
	}

	select {
	case <-exited:
		// Exited gracefully.
	case <-time.After(grace):
		// Grace window expired; force-kill the entire group.
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
	}
}
