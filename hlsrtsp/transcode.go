package hlsrtsp

import (
	"fmt"
	"path/filepath"
)

const transcodeUserAgent = "rtsp-to-hls"

// transcodeArgs builds the ffmpeg argument vector for one transcoder run.
// When seekStart > 0 the input is seeked and the output timestamps and
// segment numbering are offset so they line up with the synthesized manifest.
func transcodeArgs(config Config, identifier string, sourceURL string, seekStart int) []string {
	seekSeconds := seekStart * config.SegmentDuration

	// input options
	args := []string{
		"-rtsp_transport", "udp",
		"-fflags", "+genpts",
		"-noaccurate_seek",
		"-max_delay", "0",
		"-user_agent", transcodeUserAgent,
	}

	if seekStart > 0 {
		args = append(args,
			"-ss", fmt.Sprintf("%d", seekSeconds),
		)
	}

	args = append(args,
		"-i", sourceURL,
	)

	// output options
	args = append(args,
		"-vcodec", "copy",
		"-acodec", "aac",
		"-f", "segment",
		"-segment_time", fmt.Sprintf("%d", config.SegmentDuration),
		"-segment_format", "mpegts",
		"-segment_list", filepath.Join(config.TranscodeDir, identifier+".m3u8"),
		"-segment_list_type", "m3u8",
		"-segment_start_number", fmt.Sprintf("%d", seekStart),
		"-break_non_keyframes", "1",
		"-avoid_negative_ts", "disabled",
		"-flags", "-global_header",
		"-vsync", "0",
	)

	if seekStart > 0 {
		args = append(args,
			"-initial_offset", fmt.Sprintf("%d", seekSeconds),
		)
	}

	// output path template, expanded by the segment muxer
	args = append(args, filepath.Join(config.TranscodeDir, identifier+"%d.ts"))

	return args
}
