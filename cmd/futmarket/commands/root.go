// Package commands implements the futmarket CLI.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/extractor"
	"github.com/use-agent/futmarket/locator"
	"github.com/use-agent/futmarket/registry"
	"github.com/use-agent/futmarket/renderer"
)

// cfg is loaded from the environment before any command runs; flags below
// override the matching fields.
var cfg *config.Config

var (
	flagLogLevel    string
	flagLogFormat   string
	flagLogFile     string
	flagHeadless    bool
	flagPlayersFile string
)

var rootCmd = &cobra.Command{
	Use:   "futmarket",
	Short: "Market price extraction for futbin player cards",
	Long: `Futmarket renders futbin market pages in a real browser and extracts
the price statistics (cheapest sale, average BIN, EA average) along with
card metadata.

Examples:
  # Extract one player's prices
  futmarket extract "https://www.futbin.com/26/player/257/vivianne-miedema"

  # Track a player, then run a batch over every tracked player
  futmarket players add "Miedema" "/26/player/257/vivianne-miedema"
  futmarket run

  # Watch tracked players continuously, flagging buy opportunities
  futmarket monitor

  # Serve the extraction engine over HTTP
  futmarket serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = flagLogLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format = flagLogFormat
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = flagLogFile
		}
		if cmd.Flags().Changed("headless") {
			cfg.Browser.Headless = flagHeadless
		}
		if cmd.Flags().Changed("players-file") {
			cfg.Registry.Path = flagPlayersFile
		}
		initLogger(cfg.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to a rotated file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&flagHeadless, "headless", false, "run the browser headless")
	rootCmd.PersistentFlags().StringVar(&flagPlayersFile, "players-file", "player_links.json", "tracked-player registry file")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error("command failed", "error", err)
	}
	return err
}

// initLogger configures slog based on the LogConfig. When a log file is
// set, output goes through lumberjack for size-based rotation.
func initLogger(logCfg config.LogConfig) {
	var level slog.Level
	switch logCfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if logCfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   logCfg.File,
			MaxSize:    logCfg.MaxSizeMB,
			MaxBackups: logCfg.MaxBackups,
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if logCfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// newEngine wires the renderer, locator, and failure sink into an extraction
// engine. The caller owns the returned renderer and must Close it.
func newEngine() (*extractor.Extractor, renderer.Renderer, error) {
	session := renderer.NewSession(cfg.Browser, cfg.Extractor)

	loc, err := locator.New(locator.Options{MinPrice: cfg.Extractor.MinPrice})
	if err != nil {
		return nil, nil, err
	}

	var sink extractor.FailureSink
	if cfg.Extractor.DebugFile != "" {
		sink = &extractor.FileSink{Path: cfg.Extractor.DebugFile}
	}

	return extractor.New(session, loc, sink, cfg.Extractor), session, nil
}

func openRegistry() (*registry.Registry, error) {
	return registry.Load(cfg.Registry.Path)
}
