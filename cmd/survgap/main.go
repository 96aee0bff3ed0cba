// survgap estimates Black-White disparities in predicted 2-year survival
// across a city-level policy index, using a Bayesian hierarchical logistic
// regression over multiply-imputed covariates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	dataPath   string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "survgap",
	Short: "Racial survival-disparity analysis across a city policy index",
	Long: `survgap runs a single-pass statistical pipeline: multiple imputation of
missing covariates, a Bayesian hierarchical logistic regression fit per
completed table, pooled counterfactual prediction over a policy-index grid,
and a posterior summary of the Black-White survival gap.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML run configuration (defaults used when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	fitCmd.Flags().StringVar(&dataPath, "data", "", "person-level CSV; without it the demonstration simulator is used")

	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
