package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brookluers/survgap/internal/config"
	"github.com/brookluers/survgap/internal/data"
)

var simulateOut string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write a demonstration person-level CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		sc := data.DefaultSim()
		sc.Seed = cfg.Seed
		frame := data.Simulate(sc)
		if err := data.WriteCSV(frame, simulateOut); err != nil {
			return err
		}
		logger.Info("wrote demonstration data",
			zap.String("path", simulateOut),
			zap.Int("rows", frame.Len()))
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateOut, "out", "person.csv", "destination CSV path")
}
