package impute_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brookluers/survgap/internal/data"
	"github.com/brookluers/survgap/internal/impute"
)

func simFrame(t *testing.T) *data.Frame {
	t.Helper()
	sc := data.DefaultSim()
	sc.N = 400
	sc.Cities = 4
	f := data.Simulate(sc)
	require.Greater(t, f.MissingCount(), 0)
	return f
}

func TestRunCompletesEveryTable(t *testing.T) {
	f := simFrame(t)
	completed, err := impute.Run(f, impute.Config{M: 3, Iter: 2, Seed: 7}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, completed, 3)

	for _, g := range completed {
		require.Equal(t, f.Len(), g.Len())
		require.Equal(t, 0, g.MissingCount())
		require.NoError(t, g.CheckComplete())
	}
}

func TestRunPreservesObservedCells(t *testing.T) {
	f := simFrame(t)
	completed, err := impute.Run(f, impute.Config{M: 2, Iter: 2, Seed: 7}, zap.NewNop())
	require.NoError(t, err)

	for _, g := range completed {
		for i := 0; i < f.Len(); i++ {
			require.Equal(t, f.Survived[i], g.Survived[i])
			require.Equal(t, f.Race[i], g.Race[i])
			require.Equal(t, f.City[i], g.City[i])
			require.Equal(t, f.Policy[i], g.Policy[i])
			if !math.IsNaN(f.Age[i]) {
				require.Equal(t, f.Age[i], g.Age[i])
			}
			if f.Sex[i] != "" {
				require.Equal(t, f.Sex[i], g.Sex[i])
			}
		}
	}
}

func TestRunPolicyConstantAfterImputation(t *testing.T) {
	f := simFrame(t)
	completed, err := impute.Run(f, impute.Config{M: 2, Iter: 2, Seed: 11}, zap.NewNop())
	require.NoError(t, err)

	for _, g := range completed {
		policy := make(map[string]float64)
		for i := 0; i < g.Len(); i++ {
			if p, ok := policy[g.City[i]]; ok {
				require.Equal(t, p, g.Policy[i])
			} else {
				policy[g.City[i]] = g.Policy[i]
			}
		}
	}
}

func TestRunLevelSetsMatchAcrossTables(t *testing.T) {
	f := simFrame(t)
	completed, err := impute.Run(f, impute.Config{M: 3, Iter: 2, Seed: 13}, zap.NewNop())
	require.NoError(t, err)

	// Mismatched level sets across completed tables break pooling, so every
	// categorical value must come from the fixed schema.
	for _, g := range completed {
		for i := 0; i < g.Len(); i++ {
			require.Contains(t, data.SexLevels, g.Sex[i])
			require.Contains(t, data.YesNoLevels, g.Insured[i])
			require.Contains(t, data.YesNoLevels, g.Married[i])
			require.Contains(t, data.RaceLevels, g.Race[i])
		}
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	f := simFrame(t)
	before := f.Clone()
	_, err := impute.Run(f, impute.Config{M: 1, Iter: 1, Seed: 3}, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, before.Sex, f.Sex)
	require.Equal(t, before.Insured, f.Insured)
	require.Equal(t, before.Married, f.Married)
	for i := range before.Age {
		if math.IsNaN(before.Age[i]) {
			require.True(t, math.IsNaN(f.Age[i]))
		} else {
			require.Equal(t, before.Age[i], f.Age[i])
		}
	}
}

func TestRunReproducible(t *testing.T) {
	f := simFrame(t)
	a, err := impute.Run(f, impute.Config{M: 2, Iter: 2, Seed: 42}, zap.NewNop())
	require.NoError(t, err)
	b, err := impute.Run(f, impute.Config{M: 2, Iter: 2, Seed: 42}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, a, b)
}
