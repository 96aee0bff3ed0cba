package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brookluers/survgap/internal/data"
)

func fitConfig() Config {
	return Config{
		Chains:       2,
		Iter:         400,
		Warmup:       200,
		Thin:         2,
		TargetAccept: 0.3,
		Seed:         99,
		RefAge:       45,
		Priors:       DefaultPriors(),
	}
}

func TestFitPoolsDrawsAcrossTables(t *testing.T) {
	f := completeFrame(t, 400, 4)
	frames := []*data.Frame{f, f.Clone()}

	res, err := Fit(frames, fitConfig(), zap.NewNop())
	require.NoError(t, err)

	// Equal retained draws per completed table: chains x (iter-warmup)/thin.
	perTable := 2 * (400 - 200) / 2
	require.Equal(t, 2*perTable, res.NumDraws())
	require.Len(t, res.Diags, 2)
	require.Len(t, res.Diags[0].Chains, 2)
	require.Equal(t, NumFixed+4+1, len(res.Draws[0]))
	require.Equal(t, res.ParamNames[0], "intercept")

	for _, d := range res.Diags {
		for _, ch := range d.Chains {
			require.Greater(t, ch.Accept, 0.0)
			require.Zero(t, ch.NonFinite)
		}
	}
}

func TestFitSingleCity(t *testing.T) {
	// With one group level the random intercept shrinks toward the
	// population mean, but the model must still fit.
	f := completeFrame(t, 300, 1)

	res, err := Fit([]*data.Frame{f}, fitConfig(), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, NumFixed+1+1, len(res.Draws[0]))
	require.Len(t, res.Cities, 1)
}

func TestFitReproducible(t *testing.T) {
	f := completeFrame(t, 300, 3)

	a, err := Fit([]*data.Frame{f}, fitConfig(), zap.NewNop())
	require.NoError(t, err)
	b, err := Fit([]*data.Frame{f.Clone()}, fitConfig(), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, a.Draws, b.Draws)
}

func TestFitRecoversRaceEffectSign(t *testing.T) {
	// The simulator's race main effect is negative; with n=2000 the pooled
	// posterior mean should land clearly below zero.
	f := completeFrame(t, 2000, 6)

	res, err := Fit([]*data.Frame{f}, fitConfig(), zap.NewNop())
	require.NoError(t, err)

	coefs := res.Coefficients()
	require.Equal(t, "raceBlack", coefs[1].Term)
	require.Less(t, coefs[1].Estimate, 0.0)
	for _, c := range coefs {
		require.LessOrEqual(t, c.Lower, c.Estimate)
		require.LessOrEqual(t, c.Estimate, c.Upper)
		require.False(t, math.IsNaN(c.Estimate))
	}
}

func TestFitRejectsEmptyInput(t *testing.T) {
	_, err := Fit(nil, fitConfig(), zap.NewNop())
	require.Error(t, err)
}
