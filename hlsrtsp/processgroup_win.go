//go:build windows
// +build windows

package hlsrtsp

import (
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

func configureAsProcessGroup() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

func taskkillWithChildrenWindows(cmd *exec.Cmd) error {
	// Function adopted from: https://stackoverflow.com/a/44551450/6278
	// Taskkill command documentation: https://learn.microsoft.com/en-us/windows-server/administration/windows-commands/taskkill

	kill := exec.Command("TASKKILL", "/T", "/PID", strconv.Itoa(cmd.Process.Pid))
	kill.Stderr = os.Stderr
	kill.Stdout = os.Stdout
	return kill.Run()
}

// killTranscoderProcess kills the transcoder with its child processes.
// Caller must hold s.mu and have checked s.cmd.
func (s *Stream) killTranscoderProcess() {
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}

	err := taskkillWithChildrenWindows(s.cmd)
	if err == nil {
		s.logger.Debug().Msg("killing process group")
	} else {
		s.logger.Err(err).Msg("failed to kill process group")
	}
}
