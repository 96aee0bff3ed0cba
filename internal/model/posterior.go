package model

import (
	"math"
)

// Priors holds the prior scales. The defaults are weakly informative on the
// log-odds scale: they regularize without dominating the likelihood.
type Priors struct {
	InterceptSD float64 // intercept ~ N(0, InterceptSD^2)
	SlopeSD     float64 // each slope ~ N(0, SlopeSD^2)
	CityScaleSD float64 // tau ~ half-N(0, CityScaleSD^2)
}

func DefaultPriors() Priors {
	return Priors{InterceptSD: 5, SlopeSD: 2.5, CityScaleSD: 1}
}

// Posterior is the unnormalized log posterior of the hierarchical logistic
// model for one completed table. The parameter vector is
// [beta (NumFixed), u (one per city), log tau]; tau is sampled on the log
// scale with the Jacobian included.
type Posterior struct {
	d  *Design
	pr Priors
}

func NewPosterior(d *Design, pr Priors) *Posterior {
	return &Posterior{d: d, pr: pr}
}

func (p *Posterior) Dim() int { return p.d.Dim() }

// log(1 + exp(x)) without overflow.
func log1pexp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// LogProb implements distmv.LogProber so the posterior can be handed
// directly to the samplemv Metropolis-Hastings sampler.
func (p *Posterior) LogProb(theta []float64) float64 {
	d := p.d
	nc := len(d.Cities)
	beta := theta[:NumFixed]
	u := theta[NumFixed : NumFixed+nc]
	ltau := theta[NumFixed+nc]

	lp := 0.0
	for i, x := range d.X {
		eta := u[d.City[i]]
		for j, v := range x {
			eta += beta[j] * v
		}
		lp += d.Y[i]*eta - log1pexp(eta)
	}

	lp -= 0.5 * beta[0] * beta[0] / (p.pr.InterceptSD * p.pr.InterceptSD)
	for j := 1; j < NumFixed; j++ {
		lp -= 0.5 * beta[j] * beta[j] / (p.pr.SlopeSD * p.pr.SlopeSD)
	}

	// u_k ~ N(0, tau^2) with tau = exp(ltau); half-normal prior on tau and
	// the Jacobian term from sampling on the log scale.
	i2tau := math.Exp(-2 * ltau)
	var ssu float64
	for _, v := range u {
		ssu += v * v
	}
	tau := math.Exp(ltau)
	lp += -float64(nc)*ltau - 0.5*ssu*i2tau
	lp += -0.5*tau*tau/(p.pr.CityScaleSD*p.pr.CityScaleSD) + ltau

	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

// Grad writes the gradient of LogProb into grad. Used by the mode finder;
// the sampler itself only evaluates LogProb.
func (p *Posterior) Grad(grad, theta []float64) {
	d := p.d
	nc := len(d.Cities)
	beta := theta[:NumFixed]
	u := theta[NumFixed : NumFixed+nc]
	ltau := theta[NumFixed+nc]

	for j := range grad {
		grad[j] = 0
	}

	for i, x := range d.X {
		eta := u[d.City[i]]
		for j, v := range x {
			eta += beta[j] * v
		}
		r := d.Y[i] - 1/(1+math.Exp(-eta))
		for j, v := range x {
			grad[j] += r * v
		}
		grad[NumFixed+d.City[i]] += r
	}

	grad[0] -= beta[0] / (p.pr.InterceptSD * p.pr.InterceptSD)
	for j := 1; j < NumFixed; j++ {
		grad[j] -= beta[j] / (p.pr.SlopeSD * p.pr.SlopeSD)
	}

	i2tau := math.Exp(-2 * ltau)
	var ssu float64
	for k, v := range u {
		grad[NumFixed+k] -= v * i2tau
		ssu += v * v
	}
	tau := math.Exp(ltau)
	grad[NumFixed+nc] = -float64(nc) + ssu*i2tau - tau*tau/(p.pr.CityScaleSD*p.pr.CityScaleSD) + 1
}

// counting wraps a posterior and records evaluations that fall outside the
// support, the random-walk analogue of a divergence diagnostic.
type counting struct {
	post      *Posterior
	nonFinite int
}

func (c *counting) LogProb(x []float64) float64 {
	lp := c.post.LogProb(x)
	if math.IsInf(lp, -1) || math.IsNaN(lp) {
		c.nonFinite++
	}
	return lp
}
