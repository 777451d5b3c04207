package hlsrtsp

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minthantsin/rtsp-to-hls/internal/utils"
)

// how often the self destructor checks for inactivity
const selfDestructCheckPeriod = 5 * time.Second

// Stream owns at most one transcoder child at a time. It is created on the
// first playlist request and lives until it is killed, either explicitly or
// by its self destructor.
type Stream struct {
	logger zerolog.Logger
	config Config

	ID        string
	SourceURL string

	mu           sync.Mutex
	cmd          *exec.Cmd
	seekStart    int
	lastActivity time.Time
	destruct     chan struct{}

	finishOnce sync.Once
	onFinish   func()
}

// NewStream binds an identifier to an upstream source. onFinish is invoked
// exactly once when the stream is torn down.
func NewStream(config Config, identifier string, sourceURL string, onFinish func()) *Stream {
	return &Stream{
		logger: log.With().Str("module", "hlsrtsp").Str("stream", identifier).Logger(),
		config: config.withDefaultValues(),

		ID:        identifier,
		SourceURL: sourceURL,

		lastActivity: time.Now(),
		onFinish:     onFinish,
	}
}

// Spawn probes the upstream, synthesizes and persists the VOD manifest and
// starts the transcoder child. It returns the manifest, or an error if the
// probe or the start failed, in which case no child is left running.
func (s *Stream) Spawn(ctx context.Context) (string, error) {
	duration, err := ProbeDuration(ctx, s.config.FFprobeBinary, s.SourceURL)
	if err != nil {
		return "", errors.Wrap(err, "unable to probe upstream")
	}

	playlist := Playlist(duration, s.ID, s.config.SegmentDuration)

	manifestPath := filepath.Join(s.config.TranscodeDir, s.ID+"_master.m3u8")
	if err := os.WriteFile(manifestPath, []byte(playlist), 0644); err != nil {
		return "", errors.Wrap(err, "unable to write manifest")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return "", errors.New("transcoder already running")
	}

	cmd := exec.Command(s.config.FFmpegBinary, transcodeArgs(s.config, s.ID, s.SourceURL, s.seekStart)...)
	cmd.Stderr = utils.LogWriter(s.logger)

	// create a new process group
	cmd.SysProcAttr = configureAsProcessGroup()

	s.logger.Debug().
		Float64("duration", duration).
		Int("seek-start", s.seekStart).
		Msg("starting transcoder")

	if err := cmd.Start(); err != nil {
		return "", errors.Wrap(err, "unable to start transcoder")
	}

	s.cmd = cmd

	// wait for the child to exit
	go func() {
		err := cmd.Wait()

		s.mu.Lock()
		stale := s.cmd != cmd
		if !stale {
			s.cmd = nil
		}
		s.mu.Unlock()

		// killed on restart or teardown, the successor owns the stream now
		if stale {
			return
		}

		if err != nil {
			if exiterr, ok := err.(*exec.ExitError); ok {
				if status, ok := exiterr.Sys().(syscall.WaitStatus); ok {
					s.logger.Warn().Int("exit-status", status.ExitStatus()).Msg("transcoder has exited with an exit code != 0")
				}
			} else {
				s.logger.Err(err).Msg("transcoder has exited with an error")
			}

			// next segment request respawns at the requested index
			return
		}

		s.logger.Info().Msg("transcoder reached end of stream")
		s.Kill(false)
	}()

	s.startSelfDestructorLocked()

	return playlist, nil
}

// Restart kills the current transcoder, if any, and spawns a new one starting
// at the given segment index. Kill-then-spawn is sequential per stream.
func (s *Stream) Restart(ctx context.Context, startSegment int) error {
	s.mu.Lock()
	s.stopSelfDestructorLocked()
	if s.cmd != nil {
		s.killTranscoderProcess()
		s.cmd = nil
	}
	s.seekStart = startSegment
	s.mu.Unlock()

	_, err := s.Spawn(ctx)
	return err
}

// Kill is an idempotent teardown: it cancels the self destructor, kills the
// transcoder, optionally removes all stream artifacts and fires onFinish
// exactly once.
func (s *Stream) Kill(removeFiles bool) {
	s.mu.Lock()
	s.stopSelfDestructorLocked()
	if s.cmd != nil {
		s.logger.Debug().Msg("performing stop")
		s.killTranscoderProcess()
		s.cmd = nil
	}
	s.mu.Unlock()

	if removeFiles {
		s.removeFiles()
	}

	s.finishOnce.Do(func() {
		if s.onFinish != nil {
			s.onFinish()
		}
	})
}

// Touch marks the stream as recently used.
func (s *Stream) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = time.Now()
}

// Transcoding reports whether a transcoder child is currently live.
func (s *Stream) Transcoding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cmd != nil
}

// SeekStart returns the segment index the current transcoder run started at.
func (s *Stream) SeekStart() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seekStart
}

func (s *Stream) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.Sub(s.lastActivity) > s.config.SelfDestructDuration
}

// startSelfDestructorLocked installs the periodic inactivity check. Caller
// must hold s.mu. The check starts with the transcoder and is cancelled when
// the transcoder is killed on restart or teardown; after a crash it keeps
// running, so an idle stream still tears itself down.
func (s *Stream) startSelfDestructorLocked() {
	if s.destruct != nil {
		return
	}

	shutdown := make(chan struct{})
	s.destruct = shutdown

	go func() {
		ticker := time.NewTicker(selfDestructCheckPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-shutdown:
				return
			case <-ticker.C:
				if s.expired(time.Now()) {
					s.logger.Info().Msg("stream idle, self destructing")
					s.Kill(true)
					return
				}
			}
		}
	}()
}

func (s *Stream) stopSelfDestructorLocked() {
	if s.destruct != nil {
		close(s.destruct)
		s.destruct = nil
	}
}

// removeFiles sweeps all artifacts with this stream's prefix. Best effort,
// a reader holding an open handle is not affected.
func (s *Stream) removeFiles() {
	matches, err := filepath.Glob(filepath.Join(s.config.TranscodeDir, s.ID+"*"))
	if err != nil {
		s.logger.Err(err).Msg("unable to list stream files")
		return
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			s.logger.Err(err).Str("path", match).Msg("error while removing file")
		}
	}

	s.logger.Debug().Int("files", len(matches)).Msg("removed stream files")
}
