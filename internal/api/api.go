package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minthantsin/rtsp-to-hls/hlsrtsp"
	"github.com/minthantsin/rtsp-to-hls/internal/config"
	"github.com/minthantsin/rtsp-to-hls/internal/metrics"
)

type ApiManagerCtx struct {
	logger   zerolog.Logger
	config   *config.Server
	registry *hlsrtsp.Registry
	metrics  *metrics.Metrics
}

func New(config *config.Server, registry *hlsrtsp.Registry, metrics *metrics.Metrics) *ApiManagerCtx {
	return &ApiManagerCtx{
		logger:   log.With().Str("module", "api").Logger(),
		config:   config,
		registry: registry,
		metrics:  metrics,
	}
}

func (a *ApiManagerCtx) Mount(r *chi.Mux) {
	r.Use(cors)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		//nolint
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/watch.m3u8", a.Watch)
	r.Get("/segment.ts", a.Segment)

	r.Method("GET", "/metrics", a.metrics.Handler())
}

// streamConfig narrows the server configuration to what the core needs.
func (a *ApiManagerCtx) streamConfig() hlsrtsp.Config {
	return hlsrtsp.Config{
		TranscodeDir: a.config.TranscodeDir,

		SegmentDuration: a.config.SegmentDuration,
		SegmentMaxGap:   a.config.SegmentMaxGap,

		SelfDestructDuration: a.config.SelfDestructDuration,

		FFmpegBinary:  a.config.FFmpegBinary,
		FFprobeBinary: a.config.FFprobeBinary,
	}
}

// error responds with the compatible blanket 500 unless strict status codes
// are enabled, in which case the accurate code is used.
func (a *ApiManagerCtx) error(w http.ResponseWriter, message string, strictStatus int) {
	a.metrics.IncErrors()

	status := http.StatusInternalServerError
	if a.config.StrictStatus {
		status = strictStatus
	}

	http.Error(w, message, status)
}

// cors allows any origin and answers preflight requests, players load the
// playlist from arbitrary pages.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
