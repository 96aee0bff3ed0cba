package model

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/brookluers/survgap/internal/data"
)

// Config carries everything the fitting stage needs; there is no package
// state and no global seed.
type Config struct {
	Chains       int
	Iter         int
	Warmup       int
	Thin         int
	TargetAccept float64
	Seed         uint64
	RefAge       float64
	Priors       Priors
}

// ImputationDiag collects the sampler diagnostics for the fit to one
// completed table.
type ImputationDiag struct {
	Chains  []ChainDiag
	MaxRhat float64 // split-Rhat over the fixed effects, across chains
}

// Result is the pooled posterior over all completed tables: an equal number
// of retained draws from each table's fit, stacked. Columns follow
// ParamNames (fixed effects, city intercepts, log city scale).
type Result struct {
	ParamNames []string
	Cities     []string
	RefAge     float64
	Draws      [][]float64
	Diags      []ImputationDiag
}

// NumDraws reports the number of pooled posterior draws.
func (r *Result) NumDraws() int { return len(r.Draws) }

// chainOut carries one chain's draws or its error back to the collector.
type chainOut struct {
	chain int
	draws *mat.Dense
	diag  ChainDiag
	err   error
}

// Fit runs the full model stage: one posterior per completed table, sampled
// with cfg.Chains chains each, pooled by stacking the retained draws.
// Diagnostics are returned on the result and logged; they are never used to
// silently alter the fit.
func Fit(frames []*data.Frame, cfg Config, logger *zap.Logger) (*Result, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("model: no completed tables to fit")
	}

	designs := make([]*Design, len(frames))
	for m, f := range frames {
		d, err := NewDesign(f, cfg.RefAge)
		if err != nil {
			return nil, fmt.Errorf("model: completed table %d: %w", m, err)
		}
		designs[m] = d
		if m > 0 && len(d.Cities) != len(designs[0].Cities) {
			return nil, fmt.Errorf("model: completed table %d has %d cities, want %d",
				m, len(d.Cities), len(designs[0].Cities))
		}
	}

	res := &Result{
		ParamNames: designs[0].ParamNames(),
		Cities:     designs[0].Cities,
		RefAge:     cfg.RefAge,
	}

	scfg := SampleConfig{
		Iter:         cfg.Iter,
		Warmup:       cfg.Warmup,
		Thin:         cfg.Thin,
		TargetAccept: cfg.TargetAccept,
	}

	for m, d := range designs {
		post := NewPosterior(d, cfg.Priors)

		xmap, err := mode(post)
		if err != nil {
			return nil, fmt.Errorf("model: completed table %d: %w", m, err)
		}
		cov := proposalCov(post, xmap)

		rc := make(chan chainOut, cfg.Chains)
		for c := 0; c < cfg.Chains; c++ {
			go func(c int) {
				seed := cfg.Seed + 10000*uint64(m+1) + uint64(c+1)
				src := rand.NewSource(seed)
				start := jitter(xmap, cov, src)
				draws, diag, err := runChain(post, start, cov, scfg, src)
				rc <- chainOut{chain: c, draws: draws, diag: diag, err: err}
			}(c)
		}

		chains := make([]*mat.Dense, cfg.Chains)
		diag := ImputationDiag{Chains: make([]ChainDiag, cfg.Chains)}
		for k := 0; k < cfg.Chains; k++ {
			out := <-rc
			if out.err != nil {
				return nil, fmt.Errorf("model: completed table %d chain %d: %w", m, out.chain, out.err)
			}
			chains[out.chain] = out.draws
			diag.Chains[out.chain] = out.diag
		}

		diag.MaxRhat = maxSplitRhat(chains, NumFixed)
		res.Diags = append(res.Diags, diag)
		logDiagnostics(logger, m, diag)

		for _, ch := range chains {
			n, _ := ch.Dims()
			for i := 0; i < n; i++ {
				res.Draws = append(res.Draws, mat.Row(nil, i, ch))
			}
		}
	}

	logger.Info("model fit complete",
		zap.Int("tables", len(frames)),
		zap.Int("pooled_draws", res.NumDraws()))
	return res, nil
}

// jitter overdisperses a chain start around the mode using the proposal's
// diagonal scale.
func jitter(xmap []float64, cov *mat.SymDense, src rand.Source) []float64 {
	rng := rand.New(src)
	start := make([]float64, len(xmap))
	for j := range xmap {
		sd := math.Sqrt(math.Max(cov.At(j, j), 1e-8))
		start[j] = xmap[j] + 0.5*sd*rng.NormFloat64()
	}
	return start
}

func logDiagnostics(logger *zap.Logger, m int, diag ImputationDiag) {
	for c, ch := range diag.Chains {
		fields := []zap.Field{
			zap.Int("table", m),
			zap.Int("chain", c),
			zap.Float64("accept", ch.Accept),
			zap.Float64("scale", ch.Scale),
			zap.Int("non_finite", ch.NonFinite),
		}
		if ch.Accept < 0.1 || ch.NonFinite > 0 {
			logger.Warn("chain diagnostics out of range", fields...)
		} else {
			logger.Debug("chain diagnostics", fields...)
		}
	}
	if math.IsNaN(diag.MaxRhat) || diag.MaxRhat > 1.05 {
		logger.Warn("split-Rhat indicates poor mixing",
			zap.Int("table", m), zap.Float64("max_rhat", diag.MaxRhat))
	}
}
