//go:build unix

package python

import (
	"os/exec"
	"syscall"
)

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the group led by the interpreter.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
