// Package impute completes missing covariates by chained equations: each
// partially observed column is regressed on the others in turn, and missing
// cells are refilled from the fitted conditional's predictive distribution.
// The regressions are delegated to statmodel's GLM fitter.
package impute

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/brookluers/survgap/internal/data"
)

// Config controls one multiple-imputation run.
type Config struct {
	// M is the number of completed tables to produce.
	M int

	// Iter is the number of full column sweeps per table.
	Iter int

	Seed uint64
}

// Run produces cfg.M completed copies of f. The input frame is not mutated.
// Every returned table has passed schema normalization and the completeness
// check; a conditional-model failure aborts the run with the library error.
func Run(f *data.Frame, cfg Config, logger *zap.Logger) ([]*data.Frame, error) {

	missAge := make([]bool, f.Len())
	missSex := make([]bool, f.Len())
	missIns := make([]bool, f.Len())
	missMar := make([]bool, f.Len())
	nmiss := 0
	for i := 0; i < f.Len(); i++ {
		missAge[i] = math.IsNaN(f.Age[i])
		missSex[i] = f.Sex[i] == ""
		missIns[i] = f.Insured[i] == ""
		missMar[i] = f.Married[i] == ""
		for _, b := range []bool{missAge[i], missSex[i], missIns[i], missMar[i]} {
			if b {
				nmiss++
			}
		}
	}
	logger.Info("starting imputation",
		zap.Int("rows", f.Len()),
		zap.Int("missing_cells", nmiss),
		zap.Int("m", cfg.M))

	completed := make([]*data.Frame, cfg.M)
	for m := 0; m < cfg.M; m++ {
		// Child seed per draw so the set is reproducible as a whole and
		// each table differs.
		src := rand.NewSource(cfg.Seed + 1000*uint64(m+1))
		g := f.Clone()
		initFill(g, missAge, missSex, missIns, missMar, src)

		for it := 0; it < cfg.Iter; it++ {
			if err := sweepAge(g, missAge, src); err != nil {
				return nil, fmt.Errorf("impute: table %d sweep %d age: %w", m, it, err)
			}
			if err := sweepBinary(g, missSex, colSex, src); err != nil {
				return nil, fmt.Errorf("impute: table %d sweep %d sex: %w", m, it, err)
			}
			if err := sweepBinary(g, missIns, colInsured, src); err != nil {
				return nil, fmt.Errorf("impute: table %d sweep %d insured: %w", m, it, err)
			}
			if err := sweepBinary(g, missMar, colMarried, src); err != nil {
				return nil, fmt.Errorf("impute: table %d sweep %d married: %w", m, it, err)
			}
		}
		completed[m] = g
	}

	if err := data.NormalizeAll(completed); err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}
	logger.Info("imputation complete", zap.Int("tables", len(completed)))
	return completed, nil
}

// initFill seeds every missing cell with a uniform draw from the observed
// values of its column, which gives the first sweep a complete table to
// condition on.
func initFill(g *data.Frame, missAge, missSex, missIns, missMar []bool, src rand.Source) {
	rng := rand.New(src)

	var obsAge []float64
	var obsSex, obsIns, obsMar []string
	for i := 0; i < g.Len(); i++ {
		if !missAge[i] {
			obsAge = append(obsAge, g.Age[i])
		}
		if !missSex[i] {
			obsSex = append(obsSex, g.Sex[i])
		}
		if !missIns[i] {
			obsIns = append(obsIns, g.Insured[i])
		}
		if !missMar[i] {
			obsMar = append(obsMar, g.Married[i])
		}
	}

	for i := 0; i < g.Len(); i++ {
		if missAge[i] && len(obsAge) > 0 {
			g.Age[i] = obsAge[rng.Intn(len(obsAge))]
		}
		if missSex[i] && len(obsSex) > 0 {
			g.Sex[i] = obsSex[rng.Intn(len(obsSex))]
		}
		if missIns[i] && len(obsIns) > 0 {
			g.Insured[i] = obsIns[rng.Intn(len(obsIns))]
		}
		if missMar[i] && len(obsMar) > 0 {
			g.Married[i] = obsMar[rng.Intn(len(obsMar))]
		}
	}
}
