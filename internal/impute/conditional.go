package impute

import (
	"fmt"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/brookluers/survgap/internal/data"
)

// Imputable columns addressed by the sweeps.
type column int

const (
	colNone column = iota - 1
	colSex
	colInsured
	colMarried
)

// predictors builds the conditional-model design for one target column,
// using all other covariates plus the outcome and the policy index. The
// target itself is excluded. Constant columns are dropped so the GLM design
// stays full rank; real fitting failures still propagate from the library.
func predictors(g *data.Frame, excludeAge bool, exclude column) ([][]float64, []string) {
	n := g.Len()

	names := []string{"icept", "survived", "policy", "black"}
	cols := [][]float64{ones(n), g.Survived, g.Policy, indicator(g.Race, "Black")}

	if !excludeAge {
		names = append(names, "age")
		cols = append(cols, g.Age)
	}
	if exclude != colSex {
		names = append(names, "male")
		cols = append(cols, indicator(g.Sex, "Male"))
	}
	if exclude != colInsured {
		names = append(names, "insured")
		cols = append(cols, indicator(g.Insured, "Yes"))
	}
	if exclude != colMarried {
		names = append(names, "married")
		cols = append(cols, indicator(g.Married, "Yes"))
	}

	// Drop degenerate (constant) predictors, keeping the intercept.
	outNames := []string{names[0]}
	outCols := [][]float64{cols[0]}
	for j := 1; j < len(cols); j++ {
		if !constant(cols[j]) {
			outNames = append(outNames, names[j])
			outCols = append(outCols, cols[j])
		}
	}
	return outCols, outNames
}

// fitConditional fits a GLM of y on the given predictors over the rows where
// the target was originally observed, and returns a coefficient vector drawn
// by perturbing the estimate with its standard errors.
func fitConditional(y []float64, cols [][]float64, names []string, miss []bool,
	family *glm.Family, logistic bool, src rand.Source) ([]float64, float64, error) {

	var yobs []float64
	xobs := make([][]float64, len(cols))
	for i := range y {
		if miss[i] {
			continue
		}
		yobs = append(yobs, y[i])
		for j := range cols {
			xobs[j] = append(xobs[j], cols[j][i])
		}
	}
	if len(yobs) == 0 {
		return nil, 0, fmt.Errorf("no observed rows for conditional model")
	}

	da := append([][]float64{yobs}, xobs...)
	dnames := append([]string{"y"}, names...)
	ds := statmodel.NewDataset(da, dnames)

	c := glm.DefaultConfig()
	c.Family = family
	model, err := glm.NewGLM(ds, "y", names, c)
	if err != nil {
		return nil, 0, err
	}
	rslt := model.Fit()
	if rslt == nil {
		return nil, 0, fmt.Errorf("glm fit did not converge")
	}

	params := rslt.Params()
	se := rslt.StdErr()
	z := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	beta := make([]float64, len(params))
	for j := range params {
		beta[j] = params[j]
		if j < len(se) && !math.IsNaN(se[j]) {
			beta[j] += se[j] * z.Rand()
		}
	}

	// Residual scale on the fitted values, used only by the Gaussian draw.
	var rss float64
	for i := range yobs {
		eta := 0.0
		for j := range xobs {
			eta += params[j] * xobs[j][i]
		}
		mu := eta
		if logistic {
			mu = invlogit(eta)
		}
		r := yobs[i] - mu
		rss += r * r
	}
	sigma := math.Sqrt(rss / float64(len(yobs)))

	return beta, sigma, nil
}

// sweepAge refills the originally missing ages from the Gaussian
// conditional's predictive distribution.
func sweepAge(g *data.Frame, miss []bool, src rand.Source) error {
	if !anyMissing(miss) {
		return nil
	}
	cols, names := predictors(g, true, colNone)
	beta, sigma, err := fitConditional(g.Age, cols, names, miss, glm.NewFamily(glm.GaussianFamily), false, src)
	if err != nil {
		return err
	}
	z := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	for i := range miss {
		if !miss[i] {
			continue
		}
		eta := 0.0
		for j := range cols {
			eta += beta[j] * cols[j][i]
		}
		g.Age[i] = eta + sigma*z.Rand()
	}
	return nil
}

// sweepBinary refills one binary categorical column from its logistic
// conditional.
func sweepBinary(g *data.Frame, miss []bool, target column, src rand.Source) error {
	if !anyMissing(miss) {
		return nil
	}

	var vals []string
	var hi string
	var levels []string
	switch target {
	case colSex:
		vals, hi, levels = g.Sex, "Male", data.SexLevels
	case colInsured:
		vals, hi, levels = g.Insured, "Yes", data.YesNoLevels
	case colMarried:
		vals, hi, levels = g.Married, "Yes", data.YesNoLevels
	}

	y := indicator(vals, hi)
	cols, names := predictors(g, false, target)
	beta, _, err := fitConditional(y, cols, names, miss, glm.NewFamily(glm.BinomialFamily), true, src)
	if err != nil {
		return err
	}

	lo := levels[0]
	if lo == hi {
		lo = levels[1]
	}

	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for i := range miss {
		if !miss[i] {
			continue
		}
		eta := 0.0
		for j := range cols {
			eta += beta[j] * cols[j][i]
		}
		vals[i] = lo
		if u.Rand() < invlogit(eta) {
			vals[i] = hi
		}
	}
	return nil
}

func invlogit(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func indicator(vals []string, level string) []float64 {
	v := make([]float64, len(vals))
	for i, s := range vals {
		if s == level {
			v[i] = 1
		}
	}
	return v
}

func constant(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			return false
		}
	}
	return true
}

func anyMissing(b []bool) bool {
	for _, v := range b {
		if v {
			return true
		}
	}
	return false
}
