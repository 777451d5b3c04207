//go:build !windows
// +build !windows

package hlsrtsp

import "syscall"

func configureAsProcessGroup() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killTranscoderProcess kills the transcoder with its whole process group.
// Caller must hold s.mu and have checked s.cmd.
func (s *Stream) killTranscoderProcess() {
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}

	pgid, err := syscall.Getpgid(s.cmd.Process.Pid)
	if err == nil {
		err := syscall.Kill(-pgid, syscall.SIGKILL)
		s.logger.Err(err).Msg("killing process group")
	} else {
		s.logger.Err(err).Msg("could not get process group id")
		err := s.cmd.Process.Kill()
		s.logger.Err(err).Msg("killing process")
	}
}
