package model

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/samplemv"
)

// SampleConfig carries the sampler knobs for one chain.
type SampleConfig struct {
	Iter         int
	Warmup       int
	Thin         int
	TargetAccept float64
}

// ChainDiag reports the sampling diagnostics for one chain. These are
// surfaced on the fit result; out-of-range values are a modeling problem the
// operator must see, never something to recover from silently.
type ChainDiag struct {
	Accept    float64 // post-warmup acceptance rate
	Scale     float64 // final proposal scale multiplier
	NonFinite int     // posterior evaluations outside the support
}

const adaptWindow = 100

// runChain draws one random-walk Metropolis chain. Warmup proceeds in
// windows; after each window the scalar multiplier on the proposal
// covariance moves toward the configured target acceptance rate. Post-warmup
// draws are thinned by cfg.Thin.
func runChain(post *Posterior, start []float64, cov *mat.SymDense, cfg SampleConfig, src rand.Source) (*mat.Dense, ChainDiag, error) {

	dim := post.Dim()
	target := &counting{post: post}

	// Standard random-walk scaling as the initial multiplier.
	scale := 2.38 * 2.38 / float64(dim)
	cur := append([]float64(nil), start...)

	sampleBatch := func(n int, scale float64) (*mat.Dense, float64, error) {
		prop, ok := samplemv.NewProposalNormal(scaleCov(cov, scale), src)
		if !ok {
			return nil, 0, fmt.Errorf("model: proposal covariance not positive definite")
		}
		mh := samplemv.MetropolisHastingser{
			Initial:  cur,
			Target:   target,
			Proposal: prop,
			Src:      src,
		}
		batch := mat.NewDense(n, dim, nil)
		mh.Sample(batch)
		acc := acceptance(batch, cur)
		cur = mat.Row(nil, n-1, batch)
		return batch, acc, nil
	}

	// Warmup with adaptation.
	for done := 0; done < cfg.Warmup; {
		n := adaptWindow
		if cfg.Warmup-done < n {
			n = cfg.Warmup - done
		}
		_, acc, err := sampleBatch(n, scale)
		if err != nil {
			return nil, ChainDiag{}, err
		}
		scale *= math.Exp(acc - cfg.TargetAccept)
		done += n
	}

	// Sampling phase at the frozen scale; acceptance is measured on the
	// unthinned walk.
	keepFrom := cfg.Iter - cfg.Warmup
	batch, acc, err := sampleBatch(keepFrom, scale)
	if err != nil {
		return nil, ChainDiag{}, err
	}

	nkeep := keepFrom / cfg.Thin
	if nkeep < 1 {
		return nil, ChainDiag{}, fmt.Errorf("model: thin %d leaves no draws from %d post-warmup iterations", cfg.Thin, keepFrom)
	}
	draws := mat.NewDense(nkeep, dim, nil)
	for i := 0; i < nkeep; i++ {
		draws.SetRow(i, mat.Row(nil, (i+1)*cfg.Thin-1, batch))
	}

	diag := ChainDiag{Accept: acc, Scale: scale, NonFinite: target.nonFinite}
	return draws, diag, nil
}

// scaleCov returns s * cov without mutating cov.
func scaleCov(cov *mat.SymDense, s float64) *mat.SymDense {
	n := cov.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, s*cov.At(i, j))
		}
	}
	return out
}

// acceptance estimates the acceptance rate of a Metropolis batch from the
// fraction of transitions that moved: under a continuous proposal a repeated
// row can only be a rejection.
func acceptance(batch *mat.Dense, initial []float64) float64 {
	n, _ := batch.Dims()
	if n == 0 {
		return 0
	}
	moved := 0
	prev := initial
	for i := 0; i < n; i++ {
		row := mat.Row(nil, i, batch)
		if !equalRows(row, prev) {
			moved++
		}
		prev = row
	}
	return float64(moved) / float64(n)
}

func equalRows(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
