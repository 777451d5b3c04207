package hlsrtsp

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// how often the poller rechecks the filesystem
const pollInterval = time.Second

// the poller never gives a segment less attempts than this
const minPollAttempts = 10

// SegmentPoller waits for one requested segment file to appear, deciding
// along the way whether the transcoder has fallen too far behind and must be
// restarted at the requested index. One poller per request, single goroutine.
type SegmentPoller struct {
	logger zerolog.Logger
	config Config

	filename   string
	identifier string
	index      int

	attempts    int
	maxAttempts int

	transcodeStarting    bool
	newTranscoderStarted bool

	stream *Stream
}

// Identifier extracts the stream identifier prefix from a segment filename.
func Identifier(filename string) string {
	if len(filename) < identifierLength {
		return ""
	}
	return filename[:identifierLength]
}

// NewSegmentPoller parses the requested filename into its stream identifier
// and segment index. The stream must already be bound, a request for an
// unknown stream is rejected before a poller is built.
func NewSegmentPoller(config Config, filename string, stream *Stream) (*SegmentPoller, error) {
	base := strings.TrimSuffix(filename, ".ts")
	if base == filename || len(base) <= identifierLength {
		return nil, errors.Errorf("malformed segment name %q", filename)
	}

	index, err := strconv.Atoi(base[identifierLength:])
	if err != nil || index < 0 {
		return nil, errors.Errorf("malformed segment index in %q", filename)
	}

	config = config.withDefaultValues()

	maxAttempts := 2 * config.SegmentDuration
	if maxAttempts < minPollAttempts {
		maxAttempts = minPollAttempts
	}

	return &SegmentPoller{
		logger: log.With().Str("module", "hlsrtsp").Str("segment", filename).Logger(),
		config: config,

		filename:   filename,
		identifier: base[:identifierLength],
		index:      index,

		maxAttempts: maxAttempts,

		stream: stream,
	}, nil
}

// Restarted reports whether this poller initiated a transcoder restart.
func (p *SegmentPoller) Restarted() bool {
	return p.newTranscoderStarted
}

// WaitForSegment polls at ~1 Hz until the segment file exists and returns its
// path. It restarts the transcoder at the requested index when the stream has
// no live child or when gap analysis shows the child too far behind.
func (p *SegmentPoller) WaitForSegment(ctx context.Context) (string, error) {
	for {
		path := filepath.Join(p.config.TranscodeDir, p.filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		p.stream.Touch()

		if p.shouldStartTranscode() && !p.newTranscoderStarted {
			// latch before spawning, a second restart from the same
			// poller must never happen
			p.transcodeStarting = true
			p.newTranscoderStarted = true

			p.logger.Info().Int("start-segment", p.index).Msg("restarting transcoder")

			if err := p.stream.Restart(ctx, p.index); err != nil {
				return "", errors.Wrap(err, "unable to restart transcoder")
			}

			p.transcodeStarting = false
		}

		p.attempts++
		if p.attempts >= p.maxAttempts {
			return "", errors.Errorf("segment did not appear after %d attempts", p.maxAttempts)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (p *SegmentPoller) shouldStartTranscode() bool {
	// this poller is already bringing a transcoder up
	if p.transcodeStarting {
		return false
	}

	// stream has no live child, e.g. after a crash
	if !p.stream.Transcoding() {
		return true
	}

	if p.newTranscoderStarted {
		return false
	}

	gap := p.index - p.currentTranscodingIndex()
	return gap >= p.config.SegmentMaxGap
}

// currentTranscodingIndex determines the highest segment index the transcoder
// has produced so far. The tool written playlist is authoritative but may be
// momentarily unreadable during rotation, the file listing is the
// eventually-correct fallback.
func (p *SegmentPoller) currentTranscodingIndex() int {
	if index, err := p.indexFromPlaylist(); err == nil {
		return index
	}

	if index, err := p.indexFromFiles(); err == nil {
		return index
	}

	return 0
}

func (p *SegmentPoller) indexFromPlaylist() (int, error) {
	data, err := os.ReadFile(filepath.Join(p.config.TranscodeDir, p.identifier+".m3u8"))
	if err != nil {
		return 0, err
	}

	re := regexp.MustCompile(regexp.QuoteMeta(p.identifier) + `(\d+)\.ts`)
	matches := re.FindAllStringSubmatch(string(data), -1)

	// playlist exists but holds no segments yet
	if len(matches) == 0 {
		return 0, nil
	}

	// last occurrence in file order
	return strconv.Atoi(matches[len(matches)-1][1])
}

func (p *SegmentPoller) indexFromFiles() (int, error) {
	matches, err := filepath.Glob(filepath.Join(p.config.TranscodeDir, p.identifier+"*.ts"))
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, errors.New("no segment files")
	}

	sort.Strings(matches)

	last := filepath.Base(matches[len(matches)-1])
	return strconv.Atoi(strings.TrimSuffix(last[identifierLength:], ".ts"))
}
