package predict

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Summary is the posterior summary of the racial gap at one policy value.
type Summary struct {
	Policy float64
	Mean   float64
	Lower  float64
	Upper  float64
}

// Disparity subtracts the White from the Black predicted probability within
// each posterior draw and summarizes the differences per grid point as a
// posterior mean with a central 95% credible interval. The subtraction must
// stay inside a draw: the two predictions share coefficient draws, and
// breaking that pairing would misstate the posterior uncertainty of the gap.
func Disparity(d *Draws) ([]Summary, error) {
	nb, gb := d.Black.Dims()
	nw, gw := d.White.Dims()
	if nb != nw || gb != gw {
		return nil, fmt.Errorf("predict: draw matrices disagree: %dx%d vs %dx%d", nb, gb, nw, gw)
	}
	if gb != len(d.Policy) {
		return nil, fmt.Errorf("predict: %d grid columns for %d policy values", gb, len(d.Policy))
	}

	out := make([]Summary, gb)
	diff := make([]float64, nb)
	for g := 0; g < gb; g++ {
		black := mat.Col(nil, g, d.Black)
		white := mat.Col(nil, g, d.White)
		for i := 0; i < nb; i++ {
			diff[i] = black[i] - white[i]
		}
		sorted := append([]float64(nil), diff...)
		sort.Float64s(sorted)
		out[g] = Summary{
			Policy: d.Policy[g],
			Mean:   stat.Mean(diff, nil),
			Lower:  stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Upper:  stat.Quantile(0.975, stat.Empirical, sorted, nil),
		}
		if out[g].Lower > out[g].Mean || out[g].Mean > out[g].Upper {
			return nil, fmt.Errorf("predict: inconsistent summary at policy %g", d.Policy[g])
		}
	}
	return out, nil
}
