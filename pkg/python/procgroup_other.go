//go:build !unix

package python

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
