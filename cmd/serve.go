package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	rtsptohls "github.com/minthantsin/rtsp-to-hls"
	"github.com/minthantsin/rtsp-to-hls/internal/config"
)

func init() {
	command := &cobra.Command{
		Use:   "serve",
		Short: "serve rtsp-to-hls gateway",
		Long:  `serve rtsp-to-hls gateway`,
		Run:   rtsptohls.Service.ServeCommand,
	}

	configs := []config.Config{
		rtsptohls.Service.ServerConfig,
	}

	cobra.OnInitialize(func() {
		for _, cfg := range configs {
			cfg.Set()
		}
		rtsptohls.Service.Preflight()
	})

	for _, cfg := range configs {
		if err := cfg.Init(command); err != nil {
			log.Panic().Err(err).Msg("unable to run serve command")
		}
	}

	rootCmd.AddCommand(command)
}
