package rtsptohls

import (
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minthantsin/rtsp-to-hls/hlsrtsp"
	"github.com/minthantsin/rtsp-to-hls/internal/api"
	"github.com/minthantsin/rtsp-to-hls/internal/config"
	"github.com/minthantsin/rtsp-to-hls/internal/metrics"
	"github.com/minthantsin/rtsp-to-hls/internal/server"
)

var Service *Main

func init() {
	Service = &Main{
		ServerConfig: &config.Server{},
	}
}

type Main struct {
	ServerConfig *config.Server

	logger     zerolog.Logger
	registry   *hlsrtsp.Registry
	metrics    *metrics.Metrics
	apiManager *api.ApiManagerCtx
	server     *server.HttpManagerCtx
}

func (main *Main) Preflight() {
	main.logger = log.With().Str("service", "main").Logger()
}

func (main *Main) Start() {
	main.registry = hlsrtsp.NewRegistry(main.ServerConfig.MaxStreams)
	main.metrics = metrics.New()

	main.apiManager = api.New(
		main.ServerConfig,
		main.registry,
		main.metrics,
	)

	main.server = server.New(main.ServerConfig)
	main.server.Mount(main.apiManager.Mount)

	if main.ServerConfig.PProf {
		main.server.WithDebugPProf("/debug/pprof")
	}

	main.server.Start()
}

func (main *Main) Shutdown() {
	if err := main.server.Shutdown(); err != nil {
		main.logger.Err(err).Msg("server shutdown with an error")
	} else {
		main.logger.Debug().Msg("server shutdown")
	}

	// tear down live transcoders and their files
	main.registry.Shutdown()
}

func (main *Main) ServeCommand(cmd *cobra.Command, args []string) {
	main.logger.Info().Msg("starting main server")
	main.Start()
	main.logger.Info().Msg("main ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	sig := <-quit

	main.logger.Warn().Msgf("received %s, attempting graceful shutdown", sig)
	main.Shutdown()
	main.logger.Info().Msg("shutdown complete")
}
