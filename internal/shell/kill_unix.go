//go:build !windows

package shell

import (
	"os/exec"
	"syscall"
)

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminate(cmd *exec.Cmd, group bool) {
	signalProcess(cmd, group, syscall.SIGTERM)
}

func kill(cmd *exec.Cmd, group bool) {
	signalProcess(cmd, group, syscall.SIGKILL)
}

func signalProcess(cmd *exec.Cmd, group bool, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if group && pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}
