package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sprint-insights/config"
	"sprint-insights/llm"
)

// version is set at build time via -ldflags.
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "sprintpulse",
	Short: "Sprint reporting and support ticket automation for Jira teams",
	Long: "Sprintpulse generates mid-sprint and end-of-sprint reports on Confluence,\n" +
		"analyzes support tickets with git-history expertise matching, and keeps\n" +
		"Jira tickets in sync with your branches.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.json", "Path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(ticketCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(pagesyncCmd)
	rootCmd.AddCommand(depcheckCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(sampleConfigCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. LOG_PRETTY switches to the
// human-readable console writer for local runs.
func newLogger() zerolog.Logger {
	if os.Getenv("LOG_PRETTY") != "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// deps is everything a command needs wired before doing real work
type deps struct {
	cfg config.Config
	th  config.Thresholds
	llm *llm.Client
	log zerolog.Logger
}

// setup loads configuration, thresholds, and the shared clients. Missing
// required settings fail here, before any network call.
func setup(required ...string) (deps, error) {
	logger := newLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return deps{}, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(required...); err != nil {
		return deps{}, err
	}

	th, err := config.LoadThresholds("thresholds.yaml")
	if err != nil {
		return deps{}, fmt.Errorf("loading thresholds: %w", err)
	}

	return deps{
		cfg: cfg,
		th:  th,
		llm: llm.NewClient(cfg, logger),
		log: logger,
	}, nil
}
