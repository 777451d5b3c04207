package utils

import (
	"strings"

	"github.com/rs/zerolog"
)

type LogWriterCtx struct {
	logger zerolog.Logger
}

// LogWriter bridges a child process stderr into zerolog. ffmpeg writes
// progress lines and warnings there, they are demoted to debug so a healthy
// transcoder does not flood the log.
func LogWriter(l zerolog.Logger) *LogWriterCtx {
	return &LogWriterCtx{
		logger: l,
	}
}

func (l LogWriterCtx) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		l.logger.Debug().Str("submodule", "ffmpeg").Msg(line)
	}

	return len(p), nil
}
