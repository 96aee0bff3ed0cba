package predict_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/brookluers/survgap/internal/config"
	"github.com/brookluers/survgap/internal/model"
	"github.com/brookluers/survgap/internal/predict"
)

// analyticResult builds a fitted-model stand-in with known coefficients plus
// small noise, so disparity behavior can be checked against hand arithmetic.
func analyticResult(race, interaction float64, ndraw int) *model.Result {
	rng := rand.New(rand.NewSource(5))
	res := &model.Result{
		ParamNames: append(append([]string(nil), model.FixedEffects...), "u[c0]", "log_tau"),
		Cities:     []string{"c0"},
		RefAge:     45,
	}
	for i := 0; i < ndraw; i++ {
		d := make([]float64, model.NumFixed+2)
		d[0] = 0.2 + 0.01*rng.NormFloat64()
		d[1] = race + 0.01*rng.NormFloat64()
		d[2] = 0.3 + 0.01*rng.NormFloat64()
		d[3] = interaction + 0.01*rng.NormFloat64()
		// City intercept draws are present but must not affect predictions.
		d[model.NumFixed] = 5 * rng.NormFloat64()
		res.Draws = append(res.Draws, d)
	}
	return res
}

func ref() config.Reference {
	return config.Reference{Age: 45, Sex: "Female", Insured: "No", Married: "No"}
}

func TestGridCoversRangeInclusive(t *testing.T) {
	g := predict.Grid(config.Grid{Lo: 0, Hi: 1, Step: 0.05})
	require.Len(t, g, 21)
	require.Equal(t, 0.0, g[0])
	require.Equal(t, 1.0, g[len(g)-1])
}

func TestCounterfactualPairedByDraw(t *testing.T) {
	res := analyticResult(-0.6, 0, 500)
	grid := predict.Grid(config.Grid{Lo: 0, Hi: 1, Step: 0.1})

	d, err := predict.Counterfactual(res, grid, ref())
	require.NoError(t, err)

	nb, gb := d.Black.Dims()
	nw, gw := d.White.Dims()
	require.Equal(t, nb, nw)
	require.Equal(t, gb, gw)
	require.Equal(t, res.NumDraws(), nb)
	require.Equal(t, len(grid), gb)
}

func TestCounterfactualExcludesCityIntercept(t *testing.T) {
	// Two results identical except for wildly different city-intercept
	// draws must predict identically.
	a := analyticResult(-0.6, 0.5, 50)
	b := &model.Result{
		ParamNames: a.ParamNames, Cities: a.Cities, RefAge: a.RefAge,
	}
	for _, d := range a.Draws {
		c := append([]float64(nil), d...)
		c[model.NumFixed] = 0
		b.Draws = append(b.Draws, c)
	}

	grid := []float64{0.2, 0.8}
	da, err := predict.Counterfactual(a, grid, ref())
	require.NoError(t, err)
	db, err := predict.Counterfactual(b, grid, ref())
	require.NoError(t, err)
	require.Equal(t, da.Black.RawMatrix().Data, db.Black.RawMatrix().Data)
	require.Equal(t, da.White.RawMatrix().Data, db.White.RawMatrix().Data)
}

func TestCounterfactualIdempotent(t *testing.T) {
	res := analyticResult(-0.6, 0.5, 200)
	grid := predict.Grid(config.Grid{Lo: 0.3, Hi: 0.9, Step: 0.3})

	a, err := predict.Counterfactual(res, grid, ref())
	require.NoError(t, err)
	b, err := predict.Counterfactual(res, grid, ref())
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDisparityBoundsOrdered(t *testing.T) {
	res := analyticResult(-0.6, 0.5, 1000)
	grid := predict.Grid(config.Grid{Lo: 0, Hi: 1, Step: 0.05})

	d, err := predict.Counterfactual(res, grid, ref())
	require.NoError(t, err)
	sums, err := predict.Disparity(d)
	require.NoError(t, err)
	require.Len(t, sums, len(grid))

	for _, s := range sums {
		require.LessOrEqual(t, s.Lower, s.Mean)
		require.LessOrEqual(t, s.Mean, s.Upper)
	}
}

func TestDisparityConstantWithoutInteraction(t *testing.T) {
	// Zero interaction and a -0.6 race effect: the gap should be nearly
	// flat across the grid, with no narrowing.
	res := analyticResult(-0.6, 0, 2000)
	grid := predict.Grid(config.Grid{Lo: 0, Hi: 1, Step: 0.1})

	d, err := predict.Counterfactual(res, grid, ref())
	require.NoError(t, err)
	sums, err := predict.Disparity(d)
	require.NoError(t, err)

	first := sums[0].Mean
	last := sums[len(sums)-1].Mean
	require.Less(t, first, 0.0)
	require.InDelta(t, first, last, 0.01)
}

func TestDisparityNarrowsWithPositiveInteraction(t *testing.T) {
	res := analyticResult(-0.6, 0.5, 2000)
	grid := []float64{0.3, 0.9}

	d, err := predict.Counterfactual(res, grid, ref())
	require.NoError(t, err)
	sums, err := predict.Disparity(d)
	require.NoError(t, err)

	require.Less(t, math.Abs(sums[1].Mean), math.Abs(sums[0].Mean))
}

func TestCounterfactualRejectsEmptyModel(t *testing.T) {
	res := &model.Result{RefAge: 45}
	_, err := predict.Counterfactual(res, []float64{0.5}, ref())
	require.Error(t, err)
}
