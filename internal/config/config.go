package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config interface {
	Init(cmd *cobra.Command) error
	Set()
}

type Server struct {
	Bind   string
	Static string
	PProf  bool

	// StrictStatus emits accurate HTTP codes (503/400/404) instead of the
	// compatible blanket 500.
	StrictStatus bool

	TranscodeDir string

	SegmentDuration int
	SegmentMaxGap   int

	SelfDestructDuration time.Duration
	MaxStreams           int

	FFmpegBinary  string
	FFprobeBinary string
}

func (Server) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("bind", "127.0.0.1:8000", "address/port/socket to serve http")
	if err := viper.BindPFlag("bind", cmd.PersistentFlags().Lookup("bind")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("static", "", "path to client files to serve")
	if err := viper.BindPFlag("static", cmd.PersistentFlags().Lookup("static")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("pprof", false, "enable pprof endpoint available at /debug/pprof")
	if err := viper.BindPFlag("pprof", cmd.PersistentFlags().Lookup("pprof")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("strict-status", false, "emit accurate HTTP status codes instead of 500")
	if err := viper.BindPFlag("strict-status", cmd.PersistentFlags().Lookup("strict-status")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("transcode-dir", "transcoding-tmp", "working directory for manifests and segments")
	if err := viper.BindPFlag("transcode-dir", cmd.PersistentFlags().Lookup("transcode-dir")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("hls.segment-duration", 5, "target segment length in seconds")
	if err := viper.BindPFlag("hls.segment-duration", cmd.PersistentFlags().Lookup("hls.segment-duration")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("hls.max-gap", 3, "minimum requested-produced segment gap that forces a transcoder restart")
	if err := viper.BindPFlag("hls.max-gap", cmd.PersistentFlags().Lookup("hls.max-gap")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("self-destruct", 60*time.Second, "idle time before a stream is torn down")
	if err := viper.BindPFlag("self-destruct", cmd.PersistentFlags().Lookup("self-destruct")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("max-streams", 3, "maximum concurrent streams")
	if err := viper.BindPFlag("max-streams", cmd.PersistentFlags().Lookup("max-streams")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("ffmpeg.binary", "ffmpeg_build/ffmpeg", "path to the ffmpeg binary")
	if err := viper.BindPFlag("ffmpeg.binary", cmd.PersistentFlags().Lookup("ffmpeg.binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("ffprobe.binary", "ffmpeg_build/ffprobe", "path to the ffprobe binary")
	if err := viper.BindPFlag("ffprobe.binary", cmd.PersistentFlags().Lookup("ffprobe.binary")); err != nil {
		return err
	}

	return nil
}

func (s *Server) Set() {
	s.Bind = viper.GetString("bind")
	s.Static = viper.GetString("static")
	s.PProf = viper.GetBool("pprof")
	s.StrictStatus = viper.GetBool("strict-status")

	s.TranscodeDir = viper.GetString("transcode-dir")
	if err := os.MkdirAll(s.TranscodeDir, 0755); err != nil {
		panic(err)
	}

	s.SegmentDuration = viper.GetInt("hls.segment-duration")
	s.SegmentMaxGap = viper.GetInt("hls.max-gap")

	s.SelfDestructDuration = viper.GetDuration("self-destruct")
	s.MaxStreams = viper.GetInt("max-streams")

	s.FFmpegBinary = viper.GetString("ffmpeg.binary")
	s.FFprobeBinary = viper.GetString("ffprobe.binary")
}
