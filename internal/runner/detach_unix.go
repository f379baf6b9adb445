//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so that signals sent to
// the caller's group (e.g. Ctrl-C in a terminal) do not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
