package hlsrtsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStreamKill(t *testing.T) {
	t.Run("removes stream files and fires onFinish once", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "abcd12340.ts", "")
		writeTestFile(t, dir, "abcd12341.ts", "")
		writeTestFile(t, dir, "abcd1234.m3u8", "")
		writeTestFile(t, dir, "abcd1234_master.m3u8", "")
		writeTestFile(t, dir, "other5678.ts", "")

		finished := 0
		stream := NewStream(testPollerConfig(dir), "abcd1234", "rtsp://example/cam", func() {
			finished++
		})

		stream.Kill(true)
		stream.Kill(true)

		if finished != 1 {
			t.Errorf("onFinish fired %d times, want 1", finished)
		}

		matches, err := filepath.Glob(filepath.Join(dir, "abcd1234*"))
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 0 {
			t.Errorf("stream files left behind: %v", matches)
		}

		// other streams' files are untouched
		if _, err := os.Stat(filepath.Join(dir, "other5678.ts")); err != nil {
			t.Errorf("unrelated file removed: %v", err)
		}
	})

	t.Run("keeps files on transient teardown", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "abcd12340.ts", "")

		stream := NewStream(testPollerConfig(dir), "abcd1234", "rtsp://example/cam", nil)
		stream.Kill(false)

		if _, err := os.Stat(filepath.Join(dir, "abcd12340.ts")); err != nil {
			t.Errorf("segment removed on kill without cleanup: %v", err)
		}
	})
}

func TestStreamExpired(t *testing.T) {
	config := testPollerConfig(t.TempDir())
	config.SelfDestructDuration = 100 * time.Millisecond

	stream := NewStream(config, "abcd1234", "rtsp://example/cam", nil)

	now := time.Now()
	if stream.expired(now) {
		t.Error("stream expired immediately after creation")
	}

	if !stream.expired(now.Add(time.Second)) {
		t.Error("stream did not expire after the self destruct duration")
	}

	stream.Touch()
	if stream.expired(time.Now().Add(50 * time.Millisecond)) {
		t.Error("Touch() did not reset the activity clock")
	}
}

func TestStreamRestart(t *testing.T) {
	t.Run("sets the seek start even when the spawn fails", func(t *testing.T) {
		stream := NewStream(testPollerConfig(t.TempDir()), "abcd1234", "rtsp://example/cam", nil)

		if err := stream.Restart(context.Background(), 10); err == nil {
			t.Fatal("Restart() succeeded without ffprobe")
		}

		if got := stream.SeekStart(); got != 10 {
			t.Errorf("SeekStart() = %d, want 10", got)
		}
		if stream.Transcoding() {
			t.Error("Transcoding() = true after a failed spawn")
		}
	})
}

func TestStreamSpawnProbeFailure(t *testing.T) {
	dir := t.TempDir()
	stream := NewStream(testPollerConfig(dir), "abcd1234", "rtsp://example/cam", nil)

	if _, err := stream.Spawn(context.Background()); err == nil {
		t.Fatal("Spawn() succeeded without ffprobe")
	}

	// probe failure must not leave a manifest behind
	if _, err := os.Stat(filepath.Join(dir, "abcd1234_master.m3u8")); err == nil {
		t.Error("manifest written despite probe failure")
	}
	if stream.Transcoding() {
		t.Error("Transcoding() = true after a failed probe")
	}
}
