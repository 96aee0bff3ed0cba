package model

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CoefSummary summarizes one pooled fixed effect: posterior mean and the
// central 95% credible interval.
type CoefSummary struct {
	Term     string
	Estimate float64
	Lower    float64
	Upper    float64
}

// Coefficients summarizes the pooled fixed-effect draws. City intercepts and
// the scale parameter are deliberately omitted: they are nuisance terms here.
func (r *Result) Coefficients() []CoefSummary {
	out := make([]CoefSummary, NumFixed)
	col := make([]float64, len(r.Draws))
	for j := 0; j < NumFixed; j++ {
		for i, d := range r.Draws {
			col[i] = d[j]
		}
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		out[j] = CoefSummary{
			Term:     r.ParamNames[j],
			Estimate: stat.Mean(col, nil),
			Lower:    stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Upper:    stat.Quantile(0.975, stat.Empirical, sorted, nil),
		}
	}
	return out
}
