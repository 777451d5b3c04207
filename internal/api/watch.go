package api

import (
	"net/http"

	"github.com/minthantsin/rtsp-to-hls/hlsrtsp"
)

// Watch admits a new stream, probes the upstream and responds with the
// synthesized VOD playlist before any segment exists.
func (a *ApiManagerCtx) Watch(w http.ResponseWriter, r *http.Request) {
	logger := a.logger.With().Str("handler", "watch").Logger()

	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		a.error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	identifier := a.registry.NewIdentifier()

	stream := hlsrtsp.NewStream(a.streamConfig(), identifier, sourceURL, func() {
		a.registry.Remove(identifier)
		a.metrics.IncStreamsEnded()
		a.metrics.SetActiveStreams(a.registry.Len())
	})

	// admission happens before the probe, a full registry costs nothing
	if err := a.registry.Insert(stream); err != nil {
		logger.Warn().Err(err).Msg("stream rejected")
		a.error(w, "too many concurrent streams", http.StatusServiceUnavailable)
		return
	}

	a.metrics.SetActiveStreams(a.registry.Len())

	playlist, err := stream.Spawn(r.Context())
	if err != nil {
		logger.Warn().Err(err).Str("url", sourceURL).Msg("transcode could not be started")
		stream.Kill(true)
		a.error(w, "unable to start transcode", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("stream", identifier).Str("url", sourceURL).Msg("stream started")

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(playlist))
}
