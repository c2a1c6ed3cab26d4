// Package process runs external converter commands so that cancelling the
// context terminates the whole process tree, not only the direct child.
package process

import (
	"context"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on stdio after the group is killed.
const waitDelay = 2 * time.Second

// CommandContext is exec.CommandContext with process-group isolation and a
// Cancel hook that kills the group.
func CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	isolate(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			KillProcessGroup(cmd.Process.Pid)
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = waitDelay
	return cmd
}
