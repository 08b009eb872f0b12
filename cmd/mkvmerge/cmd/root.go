// Package cmd implements the CLI entry point for the mkvmerge core.
// It wires a RuntimeContext and internal/config and drives one
// Controller run — it does not reimplement mkvmerge's option grammar
// or any container demuxer, both out of scope per spec.md §1.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acdvorak/mkvtoolnix/internal/config"
	"github.com/acdvorak/mkvtoolnix/internal/controller"
	"github.com/acdvorak/mkvtoolnix/internal/runtimectx"
	"github.com/acdvorak/mkvtoolnix/internal/writer"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mkvmerge",
	Short: "Matroska muxing core",
	Long: `mkvmerge reads demultiplexed audio/video/subtitle frames, reorders
and repackages them into Matroska-ready blocks, and drives a Writer that
serializes the container. Demuxing and EBML serialization are external
concerns this binary delegates to whatever Reader/Writer implementations
are registered with it.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}

		rc, err := runtimectx.New(cfg)
		if err != nil {
			return fmt.Errorf("building runtime context: %w", err)
		}

		// No concrete Reader ships with this module (spec §1 places
		// container demuxing out of scope), and c is built here with no
		// tracks registered, so this command always runs the
		// header/flush/close sequence against zero tracks. Callers with
		// real tracks build and register their own Controller and call
		// RunPipeline directly.
		c := controller.New(writer.NewMemoryWriter(), rc.Logger)
		return RunPipeline(rc, cfg.Muxer.TrackOrder, c)
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
}
