package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rtm0/ctacid/internal/analysis"
	"github.com/rtm0/ctacid/internal/config"
	"github.com/rtm0/ctacid/internal/logging"
)

var (
	cfgPath   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ctacid",
	Short: "Ocean acidification analysis of the Coral Triangle",
	Long: `ctacid extracts pH and carbonate saturation states of the Coral Triangle
from CMIP6 model output, compares the historical run with five SSP
projections and renders the figures of the study.

Settings are read from a YAML file (--config or CTACID_CONFIG) and
CTACID_* environment variables on top of built-in defaults.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var stepHelp = map[string]string{
	"extract":    "Subset the raw fields to the analysis window and build the temporal tables",
	"pco2":       "Plot the atmospheric pCO2 forcing of every scenario",
	"timeseries": "Plot the spatial-mean series with their std bands",
	"compare":    "Compare the scenarios with Kruskal-Wallis and Dunn's tests",
	"describe":   "Report skewness, kurtosis, normality and stationarity of every series",
	"spatial":    "Plot the historical maps and the projected anomalies",
	"relief":     "Plot the relief map of the study area",
}

// stepCommand exposes a pipeline as a subcommand.
func stepCommand(s analysis.Step) *cobra.Command {
	return &cobra.Command{
		Use:   s.Name,
		Short: stepHelp[s.Name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.Run(newRunner(cmd), cmd.Context())
		},
	}
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every pipeline in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return newRunner(cmd).All(cmd.Context())
	},
}

func newRunner(cmd *cobra.Command) *analysis.Runner {
	return analysis.New(cfg, logger, cmd.OutOrStdout())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML config file (or set CTACID_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	for _, s := range analysis.Steps {
		rootCmd.AddCommand(stepCommand(s))
	}
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(pushCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		logger.Error("ctacid failed", "err", err)
		os.Exit(1)
	}
}
