package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/cropadvisor/internal/advisor"
	"github.com/HerbHall/cropadvisor/internal/config"
	"github.com/HerbHall/cropadvisor/internal/dataset"
)

// app holds state shared by every subcommand.
type app struct {
	// Global flags
	configPath string
	verbose    bool

	logger   *zap.Logger
	cfg      *config.Config
	settings config.Settings
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cropadvisor",
		Short: "Crop recommendation from soil and climate measurements",
		Long: `cropadvisor matches soil nutrient and climate measurements against a
reference table of crop growing conditions and recommends the crops whose
conditions fit, ordered by yield.

It also selects the most valuable set of crops that fits a capacity budget.

Run "cropadvisor serve" to start the HTTP API.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to configuration file (default ./cropadvisor.yaml if present)")
	pf.String("dataset", "", "reference dataset (.csv, .yaml, .db); empty uses the built-in sample")
	pf.String("rank-key", "", "column used to order recommendations (default from dataset)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newServeCmd(),
		a.newRecommendCmd(),
		a.newSelectCmd(),
		a.newCropsCmd(),
		a.newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// setup initializes the logger and configuration before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	zcfg := zap.NewProductionConfig()
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	v := cfg.Viper()
	bindings := map[string]string{
		"dataset.path":     "dataset",
		"dataset.rank_key": "rank-key",
		"server.host":      "host",
		"server.port":      "port",
	}
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.settings = s
	return nil
}

// loadAdvisor reads the reference dataset. A dataset that cannot be read is
// fatal to every command that needs it.
func (a *app) loadAdvisor(ctx context.Context) (*advisor.Advisor, error) {
	ds, err := dataset.Load(ctx, a.settings.Dataset.Path, a.settings.Dataset.RankKey)
	if err != nil {
		a.logger.Error("failed to load reference dataset",
			zap.String("path", a.settings.Dataset.Path), zap.Error(err))
		return nil, err
	}
	a.logger.Debug("reference dataset loaded",
		zap.String("source", ds.Source()),
		zap.Int("records", ds.Len()),
		zap.String("rank_key", ds.RankKey()))

	return advisor.New(ds, a.logger.Named("advisor"),
		advisor.WithFallbackLabel(a.settings.Fallback.Label),
		advisor.WithMaxCells(a.settings.Selector.MaxCells),
	)
}
