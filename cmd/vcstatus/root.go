package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"vcstatus/internal/cfg"
	"vcstatus/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel string
	envFile  string
}

// settings is populated before any subcommand runs.
var settings cfg.Settings

var (
	metricsOnce sync.Once
	defaultMW   *metrics.MetricsWrapper
)

// defaultMetrics registers the pipeline metrics on the default registry once per process.
func defaultMetrics() *metrics.MetricsWrapper {
	metricsOnce.Do(func() {
		defaultMW = metrics.NewWrapper(metrics.New())
	})
	return defaultMW
}

var rootCmd = &cobra.Command{
	Use:   "vcstatus",
	Short: "Predict whether a venture-backed company is operating or closed",
	Long: "vcstatus cleans venture-capital investment records, trains a random forest\n" +
		"on the operating and closed companies, and serves predictions from the\n" +
		"persisted model and label encoder.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.StringVar(&rootFlags.envFile, "env-file", ".env", "Optional dotenv file loaded before configuration")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	if rootFlags.envFile != "" {
		if err := godotenv.Load(rootFlags.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", rootFlags.envFile, err)
		}
	}

	s, err := cfg.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	settings = s

	levelName := settings.LogLevel
	if rootFlags.logLevel != "" {
		levelName = rootFlags.logLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

	log.Debug().
		Str("source", settings.SourcePath).
		Str("artifact_dir", settings.ArtifactDir).
		Int64("seed", settings.Seed).
		Int("estimators", settings.Estimators).
		Msg("Configuration loaded")
	return nil
}
