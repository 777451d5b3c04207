package api

import (
	"io"
	"net/http"
	"os"

	"github.com/minthantsin/rtsp-to-hls/hlsrtsp"
)

// Segment waits for the requested segment file to be transcoded and streams
// its bytes from disk. Segments below the transcoder's current position are
// served directly, a request too far ahead restarts the transcoder there.
func (a *ApiManagerCtx) Segment(w http.ResponseWriter, r *http.Request) {
	logger := a.logger.With().Str("handler", "segment").Logger()

	filename := r.URL.Query().Get("file")
	if filename == "" {
		a.error(w, "missing file parameter", http.StatusBadRequest)
		return
	}

	stream, ok := a.registry.Get(hlsrtsp.Identifier(filename))
	if !ok {
		logger.Warn().Str("file", filename).Msg("segment for unknown stream")
		a.error(w, "stream not found", http.StatusNotFound)
		return
	}

	poller, err := hlsrtsp.NewSegmentPoller(a.streamConfig(), filename, stream)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid segment request")
		a.error(w, "invalid segment name", http.StatusBadRequest)
		return
	}

	path, err := poller.WaitForSegment(r.Context())
	if poller.Restarted() {
		a.metrics.IncRestarts()
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", filename).Msg("segment not available")
		a.error(w, "segment not available", http.StatusInternalServerError)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("unable to open segment")
		a.error(w, "segment not available", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	a.metrics.IncSegmentsServed()

	// stream straight from the open handle, a concurrent cleanup sweep
	// cannot hurt an already opened file
	w.Header().Set("Content-Type", "video/mp2t")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = io.Copy(w, file)
}
