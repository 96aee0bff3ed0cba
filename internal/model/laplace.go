package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Proposal variance for log tau, which the mode search leaves to the
// sampler entirely.
const ltauPropVar = 0.25

// mode finds the conditional posterior mode over (beta, u) with log tau held
// at the prior scale. The full posterior has no mode: along the hierarchical
// funnel, with the city intercepts at zero, it grows without bound as log
// tau falls, so optimizing all parameters jointly diverges. With the scale
// pinned the negative log posterior is strictly convex and L-BFGS converges;
// the sampler alone explores log tau. The gradient threshold is loose; the
// mode only seeds the chains and the proposal covariance, it is not a
// reported estimate.
func mode(post *Posterior) ([]float64, error) {

	dim := post.Dim()
	ltau0 := math.Log(post.pr.CityScaleSD)

	embed := func(z []float64) []float64 {
		x := make([]float64, dim)
		copy(x, z)
		x[dim-1] = ltau0
		return x
	}

	problem := optimize.Problem{
		Func: func(z []float64) float64 { return -post.LogProb(embed(z)) },
		Grad: func(grad, z []float64) {
			full := make([]float64, dim)
			post.Grad(full, embed(z))
			for j := range grad {
				grad[j] = -full[j]
			}
		},
	}

	settings := &optimize.Settings{GradientThreshold: 1e-3}
	z0 := make([]float64, dim-1)

	result, err := optimize.Minimize(problem, z0, settings, &optimize.LBFGS{})
	if err != nil {
		return nil, fmt.Errorf("model: mode search: %w", err)
	}
	return embed(result.X), nil
}

// proposalCov returns a proposal covariance from the curvature at the
// profiled mode: the inverse of the finite-difference Hessian of the
// negative log posterior over (beta, u), bordered with a fixed variance for
// log tau. If the Hessian is not positive definite the diagonal curvature
// is used instead.
func proposalCov(post *Posterior, x []float64) *mat.SymDense {
	dim := post.Dim()
	ltau := x[dim-1]

	embed := func(z []float64) []float64 {
		full := make([]float64, dim)
		copy(full, z)
		full[dim-1] = ltau
		return full
	}

	hess := mat.NewSymDense(dim-1, nil)
	fd.Hessian(hess, func(z []float64) float64 { return -post.LogProb(embed(z)) }, x[:dim-1], nil)

	cov := mat.NewSymDense(dim, nil)
	cov.SetSym(dim-1, dim-1, ltauPropVar)

	var ch mat.Cholesky
	if ch.Factorize(hess) {
		var inv mat.SymDense
		if err := ch.InverseTo(&inv); err == nil {
			for i := 0; i < dim-1; i++ {
				for j := i; j < dim-1; j++ {
					cov.SetSym(i, j, inv.At(i, j))
				}
			}
			return cov
		}
	}

	// Fallback: diagonal covariance from the diagonal curvature, floored
	// so a flat direction cannot freeze the walk.
	for j := 0; j < dim-1; j++ {
		h := hess.At(j, j)
		if h <= 1e-8 {
			h = 1e-8
		}
		cov.SetSym(j, j, 1/h)
	}
	return cov
}
