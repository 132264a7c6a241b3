//go:build windows

package shell

import (
	"os/exec"
	"strconv"
)

func setProcessGroup(*exec.Cmd) {}

// Windows has no SIGTERM; terminate kills the process tree directly.
func terminate(cmd *exec.Cmd, group bool) {
	kill(cmd, group)
}

// kill uses taskkill: /F = force, /T = terminate child processes.
func kill(cmd *exec.Cmd, group bool) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	if group {
		_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
		return
	}
	_ = cmd.Process.Kill()
}
