//go:build windows

package runner

import (
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

// createNoWindow prevents a console window from flashing up for the child.
const createNoWindow = 0x08000000

func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
}

// terminateTree terminates the child and its descendants via taskkill /T.
// Windows has no process groups to signal, so there is no graceful phase;
// /F force-kills the whole tree at once. Idempotent — taskkill on an exited
// pid fails and the error is discarded.
func terminateTree(pid int, _ time.Duration, _ <-chan struct{}) {
	kill := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid))
	kill.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
	_ = kill.Run()
}
