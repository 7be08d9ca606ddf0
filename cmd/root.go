// Package cmd implements the civic-classifier command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/config"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
)

const defaultConfigPath = "config.yml"

// Version is overridden at build time via -ldflags.
var Version = "dev"

// app carries the global flags and the lazily built components.
type app struct {
	cfgFile     string
	debug       bool
	metricsFile string

	comps *bootstrap.Components
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "civic-classifier",
		Short: "Classify civic complaints into routable tickets",
		Long: `civic-classifier turns a photo, a voice note or free text describing a
municipal problem into a structured ticket: category, department,
priority and title.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.comps == nil {
				return nil
			}
			return a.comps.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newBatchCommand(a),
		newHealthCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// setup loads configuration and builds the components once per process.
func (a *app) setup(ctx context.Context) (*bootstrap.Components, error) {
	if a.comps != nil {
		return a.comps, nil
	}

	path := a.cfgFile
	if path == "" {
		path = config.GetConfigPath(defaultConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	if a.metricsFile != "" {
		cfg.Telemetry.MetricsFile = a.metricsFile
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version))

	comps, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	a.comps = comps
	return comps, nil
}

func openInput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
