//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

const createNewProcessGroup = 0x00000200

// detach starts the child in a new process group so console control
// events sent to the caller do not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
}
