package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// default configuration lookup path on linux
const defCfgPath = "/etc/rtsp-to-hls/"

// prefix for configuration environment variables
const envPrefix = "RTSP_TO_HLS"

var rootCmd = &cobra.Command{
	Use:     "rtsp-to-hls",
	Short:   "RTSP to HLS gateway CLI.",
	Long:    `On-demand RTSP to HLS transcoding gateway.`,
	Version: "1.0.0",
}

var onConfigLoad []func()

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	var cfgFile string

	cobra.OnInitialize(func() {
		loadConfiguration(cfgFile)
		setupLogging()

		if file := viper.ConfigFileUsed(); file != "" {
			// reload dependent configs whenever the file changes
			viper.OnConfigChange(func(e fsnotify.Event) {
				log.Info().Msg("config file reloaded")

				for _, loadConfig := range onConfigLoad {
					loadConfig()
				}
			})
			viper.WatchConfig()

			log.Info().Str("config", file).Msg("preflight complete with config file")
		} else {
			log.Warn().Msg("preflight complete without config file")
		}

		for _, loadConfig := range onConfigLoad {
			loadConfig()
		}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	flags := map[string]struct {
		value interface{}
		usage string
	}{
		"log.level":      {"", "log level (trace, debug, info, warn, error)"},
		"log.console":    {true, "log to stderr console"},
		"log.file":       {"", "log to a rotated file at this path"},
		"log.maxage":     {0, "days to keep a rotated logfile"},
		"log.maxsize":    {100, "megabytes before the logfile is rotated"},
		"log.maxbackups": {0, "number of rotated logfiles to keep"},
	}

	for name, flag := range flags {
		switch value := flag.value.(type) {
		case string:
			rootCmd.PersistentFlags().String(name, value, flag.usage)
		case bool:
			rootCmd.PersistentFlags().Bool(name, value, flag.usage)
		case int:
			rootCmd.PersistentFlags().Int(name, value, flag.usage)
		}
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func loadConfiguration(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")

		if runtime.GOOS == "linux" {
			viper.AddConfigPath(defCfgPath)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// a missing implicit config file is fine, a named one is not
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
}

func setupLogging() {
	var writers []io.Writer

	if viper.GetBool("log.console") {
		writers = append(writers, zerolog.ConsoleWriter{
			Out: os.Stderr,
		})
	}

	if file := viper.GetString("log.file"); file != "" {
		logger := &lumberjack.Logger{
			Filename:   file,
			MaxAge:     viper.GetInt("log.maxage"),     // days
			MaxSize:    viper.GetInt("log.maxsize"),    // megabytes
			MaxBackups: viper.GetInt("log.maxbackups"), // files
		}

		// rotate in response to SIGHUP
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGHUP)

		go func() {
			for {
				<-c
				logger.Rotate()
			}
		}()

		writers = append(writers, logger)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(io.MultiWriter(writers...))

	levelName := viper.GetString("log.level")
	if levelName == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Info().Msg("using default log level")
		return
	}

	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Str("log-level", levelName).Msg("unknown log level")
		return
	}
	zerolog.SetGlobalLevel(level)
}
