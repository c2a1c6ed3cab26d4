//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; the caller falls back to cmd.Process.Kill via exec.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// isolate starts cmd in its own process group so the whole tree
// (pandoc may spawn helpers) can be signalled at once.
func isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
