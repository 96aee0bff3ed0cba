// Package model fits the Bayesian hierarchical logistic regression: survival
// on race, policy index, their interaction, and demographic covariates, with
// a random intercept per city. One posterior is sampled per completed table
// and the draws are pooled.
package model

import (
	"fmt"

	"github.com/brookluers/survgap/internal/data"
)

// Fixed-effect terms in design-matrix column order. Age enters centered at
// the analyst's reference age so the intercept is interpretable at the
// prediction reference point.
var FixedEffects = []string{
	"intercept",
	"raceBlack",
	"policy",
	"raceBlack:policy",
	"age_c",
	"sexMale",
	"insuredYes",
	"marriedYes",
}

// NumFixed is the number of fixed-effect columns.
const NumFixed = 8

// FixedRow builds one design-matrix row for the given covariate values.
func FixedRow(race string, policy, age float64, sex, insured, married string, refAge float64) []float64 {
	x := make([]float64, NumFixed)
	x[0] = 1
	if race == "Black" {
		x[1] = 1
		x[3] = policy
	}
	x[2] = policy
	x[4] = age - refAge
	if sex == "Male" {
		x[5] = 1
	}
	if insured == "Yes" {
		x[6] = 1
	}
	if married == "Yes" {
		x[7] = 1
	}
	return x
}

// Design is the model-ready encoding of one completed table.
type Design struct {
	X      [][]float64 // n rows of NumFixed values
	Y      []float64
	City   []int // row -> city index
	Cities []string
}

// NewDesign encodes a completed table. The city index mapping follows
// first-appearance order, so designs built from completed tables of the same
// input share it.
func NewDesign(f *data.Frame, refAge float64) (*Design, error) {
	if err := f.CheckComplete(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	cities := f.Cities()
	idx := make(map[string]int, len(cities))
	for k, c := range cities {
		idx[c] = k
	}

	d := &Design{
		X:      make([][]float64, f.Len()),
		Y:      append([]float64(nil), f.Survived...),
		City:   make([]int, f.Len()),
		Cities: cities,
	}
	for i := 0; i < f.Len(); i++ {
		d.X[i] = FixedRow(f.Race[i], f.Policy[i], f.Age[i], f.Sex[i], f.Insured[i], f.Married[i], refAge)
		d.City[i] = idx[f.City[i]]
	}
	return d, nil
}

// Dim is the full parameter dimension: fixed effects, one intercept per
// city, and the log of the city-intercept scale.
func (d *Design) Dim() int { return NumFixed + len(d.Cities) + 1 }

// ParamNames lists the parameter vector entries in order.
func (d *Design) ParamNames() []string {
	names := append([]string(nil), FixedEffects...)
	for _, c := range d.Cities {
		names = append(names, "u["+c+"]")
	}
	return append(names, "log_tau")
}
