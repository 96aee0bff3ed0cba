// Package predict evaluates the fitted model over a counterfactual policy
// grid and summarizes the Black-White survival gap.
package predict

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/brookluers/survgap/internal/config"
	"github.com/brookluers/survgap/internal/model"
)

// Grid expands [lo, hi] by step into the policy values at which the
// disparity is evaluated. Hi is included when it lands on the step within
// floating-point slack.
func Grid(g config.Grid) []float64 {
	var out []float64
	for v := g.Lo; v <= g.Hi+1e-9; v += g.Step {
		out = append(out, math.Round(v*1e9)/1e9)
	}
	return out
}

// Draws holds the posterior predictive survival probabilities for the two
// counterfactual race assignments. Rows are posterior draws, columns grid
// points; the two matrices are paired by row, which is what makes the
// disparity subtraction draw-correct.
type Draws struct {
	Policy []float64
	Black  *mat.Dense
	White  *mat.Dense
}

// Counterfactual computes, for every pooled posterior draw and grid point,
// the predicted survival probability under race=Black and race=White with
// all other covariates at the reference levels. The city intercept is
// excluded from the linear predictor, so the predictions are
// population-average over cities rather than tied to any fitted city. The
// computation is deterministic given the fitted model and grid.
func Counterfactual(res *model.Result, grid []float64, ref config.Reference) (*Draws, error) {
	if res.NumDraws() == 0 {
		return nil, fmt.Errorf("predict: fitted model has no draws")
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("predict: empty policy grid")
	}

	xb := make([][]float64, len(grid))
	xw := make([][]float64, len(grid))
	for g, pol := range grid {
		xb[g] = model.FixedRow("Black", pol, ref.Age, ref.Sex, ref.Insured, ref.Married, res.RefAge)
		xw[g] = model.FixedRow("White", pol, ref.Age, ref.Sex, ref.Insured, ref.Married, res.RefAge)
	}

	nd := res.NumDraws()
	d := &Draws{
		Policy: append([]float64(nil), grid...),
		Black:  mat.NewDense(nd, len(grid), nil),
		White:  mat.NewDense(nd, len(grid), nil),
	}

	for i, draw := range res.Draws {
		beta := draw[:model.NumFixed]
		for g := range grid {
			d.Black.Set(i, g, invlogit(dot(beta, xb[g])))
			d.White.Set(i, g, invlogit(dot(beta, xw[g])))
		}
	}
	return d, nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func invlogit(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
