package hlsrtsp

import "time"

type Config struct {
	TranscodeDir string // Directory for manifests and segment files.

	SegmentDuration int // Target segment length in seconds.
	SegmentMaxGap   int // Minimum requested-produced gap that forces a restart.

	SelfDestructDuration time.Duration // Idle time before a stream tears itself down.

	FFmpegBinary  string
	FFprobeBinary string
}

func (c Config) withDefaultValues() Config {
	if c.SegmentDuration <= 0 {
		c.SegmentDuration = 5
	}
	if c.SegmentMaxGap <= 0 {
		c.SegmentMaxGap = 3
	}
	if c.SelfDestructDuration <= 0 {
		c.SelfDestructDuration = 60 * time.Second
	}
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = "ffmpeg_build/ffmpeg"
	}
	if c.FFprobeBinary == "" {
		c.FFprobeBinary = "ffmpeg_build/ffprobe"
	}
	return c
}
