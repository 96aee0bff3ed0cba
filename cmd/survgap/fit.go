package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brookluers/survgap/internal/config"
	"github.com/brookluers/survgap/internal/data"
	"github.com/brookluers/survgap/internal/impute"
	"github.com/brookluers/survgap/internal/model"
	"github.com/brookluers/survgap/internal/predict"
	"github.com/brookluers/survgap/internal/report"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Run the full pipeline and write the artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runFit(cfg)
	},
}

func runFit(cfg config.Config) error {

	var frame *data.Frame
	if dataPath != "" {
		var err error
		frame, err = data.LoadCSV(dataPath)
		if err != nil {
			return err
		}
		logger.Info("loaded person-level table",
			zap.String("path", dataPath),
			zap.Int("rows", frame.Len()),
			zap.Int("cities", len(frame.Cities())))
	} else {
		sc := data.DefaultSim()
		sc.Seed = cfg.Seed
		frame = data.Simulate(sc)
		logger.Info("no --data given; using the demonstration simulator",
			zap.Int("rows", frame.Len()),
			zap.Int("cities", len(frame.Cities())))
	}
	if err := frame.Validate(); err != nil {
		return err
	}

	completed, err := impute.Run(frame, impute.Config{
		M:    cfg.Imputations,
		Iter: cfg.ImputeIter,
		Seed: cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	res, err := model.Fit(completed, model.Config{
		Chains:       cfg.Chains,
		Iter:         cfg.Iter,
		Warmup:       cfg.Warmup,
		Thin:         cfg.Thin,
		TargetAccept: cfg.TargetAccept,
		Seed:         cfg.Seed,
		RefAge:       cfg.Reference.Age,
		Priors:       model.DefaultPriors(),
	}, logger)
	if err != nil {
		return err
	}

	grid := predict.Grid(cfg.Grid)
	draws, err := predict.Counterfactual(res, grid, cfg.Reference)
	if err != nil {
		return err
	}
	sums, err := predict.Disparity(draws)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cfg.OutDir, err)
	}
	outputs := []struct {
		name string
		fn   func(string) error
	}{
		{"model.gob.gz", func(p string) error { return report.SaveModel(res, p) }},
		{"disparity.csv", func(p string) error { return report.WriteDisparity(sums, p) }},
		{"coefficients.csv", func(p string) error { return report.WriteCoefficients(res.Coefficients(), p) }},
		{"disparity.png", func(p string) error { return report.PlotDisparity(sums, p) }},
	}
	for _, out := range outputs {
		p := filepath.Join(cfg.OutDir, out.name)
		if err := out.fn(p); err != nil {
			return err
		}
		logger.Info("wrote artifact", zap.String("path", p))
	}

	return nil
}
