package hlsrtsp

import (
	"path/filepath"
	"strings"
	"testing"
)

func containsPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func containsFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

func TestTranscodeArgs(t *testing.T) {
	config := Config{
		TranscodeDir:    "transcoding-tmp",
		SegmentDuration: 5,
	}.withDefaultValues()

	t.Run("without seek", func(t *testing.T) {
		args := transcodeArgs(config, "abcd1234", "rtsp://example/cam", 0)

		if containsFlag(args, "-ss") {
			t.Errorf("args contain -ss without a seek: %v", args)
		}
		if containsFlag(args, "-initial_offset") {
			t.Errorf("args contain -initial_offset without a seek: %v", args)
		}

		if !containsPair(args, "-segment_start_number", "0") {
			t.Errorf("args = %v, want -segment_start_number 0", args)
		}
		if !containsPair(args, "-rtsp_transport", "udp") {
			t.Errorf("args = %v, want -rtsp_transport udp", args)
		}
		if !containsPair(args, "-segment_time", "5") {
			t.Errorf("args = %v, want -segment_time 5", args)
		}
		if !containsPair(args, "-vcodec", "copy") {
			t.Errorf("args = %v, want -vcodec copy", args)
		}
		if !containsPair(args, "-acodec", "aac") {
			t.Errorf("args = %v, want -acodec aac", args)
		}
		if !containsPair(args, "-segment_list", filepath.Join("transcoding-tmp", "abcd1234.m3u8")) {
			t.Errorf("args = %v, want tool-written playlist path", args)
		}

		last := args[len(args)-1]
		if last != filepath.Join("transcoding-tmp", "abcd1234%d.ts") {
			t.Errorf("output template = %q", last)
		}
	})

	t.Run("with seek", func(t *testing.T) {
		args := transcodeArgs(config, "abcd1234", "rtsp://example/cam", 10)

		if !containsPair(args, "-ss", "50") {
			t.Errorf("args = %v, want -ss 50", args)
		}
		if !containsPair(args, "-initial_offset", "50") {
			t.Errorf("args = %v, want -initial_offset 50", args)
		}
		if !containsPair(args, "-segment_start_number", "10") {
			t.Errorf("args = %v, want -segment_start_number 10", args)
		}
	})

	t.Run("seek options precede the input", func(t *testing.T) {
		args := transcodeArgs(config, "abcd1234", "rtsp://example/cam", 3)

		ss, input := -1, -1
		for i, arg := range args {
			if arg == "-ss" {
				ss = i
			}
			if arg == "-i" {
				input = i
			}
		}

		if ss == -1 || input == -1 || ss > input {
			t.Errorf("args = %v, want -ss before -i", strings.Join(args, " "))
		}
	})
}
