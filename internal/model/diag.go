package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// splitRhat computes the split potential-scale-reduction statistic for one
// parameter across chains. Each chain is halved so within-chain drift also
// registers as disagreement. Values near 1 indicate the chains mixed.
func splitRhat(chains []*mat.Dense, col int) float64 {

	var halves [][]float64
	for _, ch := range chains {
		n, _ := ch.Dims()
		if n < 4 {
			return math.NaN()
		}
		x := mat.Col(nil, col, ch)
		halves = append(halves, x[:n/2], x[n/2:])
	}

	m := len(halves)
	n := len(halves[0])
	for _, h := range halves {
		if len(h) < n {
			n = len(h)
		}
	}

	means := make([]float64, m)
	vars := make([]float64, m)
	for k, h := range halves {
		means[k] = stat.Mean(h[:n], nil)
		vars[k] = stat.Variance(h[:n], nil)
	}

	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	if w <= 0 {
		return math.NaN()
	}
	vhat := (float64(n-1)/float64(n))*w + b/float64(n)
	return math.Sqrt(vhat / w)
}

// maxSplitRhat returns the largest split-Rhat over the given columns.
func maxSplitRhat(chains []*mat.Dense, cols int) float64 {
	worst := math.Inf(-1)
	for j := 0; j < cols; j++ {
		r := splitRhat(chains, j)
		if math.IsNaN(r) {
			return math.NaN()
		}
		if r > worst {
			worst = r
		}
	}
	return worst
}
