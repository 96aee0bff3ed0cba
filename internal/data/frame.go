// Package data defines the person-level table consumed by the pipeline and
// the categorical schema shared by every completed copy of it.
package data

import (
	"fmt"
	"math"
)

// Column names as they appear in CSV input.
const (
	ColSurvived = "survived"
	ColRace     = "race"
	ColAge      = "age"
	ColSex      = "sex"
	ColInsured  = "insured"
	ColMarried  = "married"
	ColCity     = "city"
	ColPolicy   = "policy_index"
)

// Fixed level sets for the categorical columns. Every table in the pipeline,
// including each completed imputation, must use exactly these strings; the
// pooled posterior is meaningless otherwise.
var (
	RaceLevels  = []string{"White", "Black"}
	SexLevels   = []string{"Female", "Male"}
	YesNoLevels = []string{"No", "Yes"}
)

// Frame is one person-level table in columnar form. Missing values are NaN
// in float columns and "" in string columns. Survived, Race, City and Policy
// are never missing.
type Frame struct {
	Survived []float64
	Race     []string
	Age      []float64
	Sex      []string
	Insured  []string
	Married  []string
	City     []string
	Policy   []float64
}

func (f *Frame) Len() int { return len(f.Survived) }

// Clone returns a deep copy. Imputation works on clones so the input table
// is never mutated.
func (f *Frame) Clone() *Frame {
	g := &Frame{
		Survived: append([]float64(nil), f.Survived...),
		Race:     append([]string(nil), f.Race...),
		Age:      append([]float64(nil), f.Age...),
		Sex:      append([]string(nil), f.Sex...),
		Insured:  append([]string(nil), f.Insured...),
		Married:  append([]string(nil), f.Married...),
		City:     append([]string(nil), f.City...),
		Policy:   append([]float64(nil), f.Policy...),
	}
	return g
}

// Cities returns the distinct city labels in first-appearance order.
func (f *Frame) Cities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range f.City {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// MissingCount reports the number of missing cells in the imputable columns.
func (f *Frame) MissingCount() int {
	n := 0
	for i := range f.Survived {
		if math.IsNaN(f.Age[i]) {
			n++
		}
		for _, s := range []string{f.Sex[i], f.Insured[i], f.Married[i]} {
			if s == "" {
				n++
			}
		}
	}
	return n
}

func levelOK(v string, levels []string) bool {
	for _, l := range levels {
		if v == l {
			return true
		}
	}
	return false
}

// Validate checks the schema invariants on an input table: column lengths
// agree, mandatory columns are complete, categorical values come from the
// fixed level sets (missing allowed where noted), and the policy index is
// constant within each city.
func (f *Frame) Validate() error {
	n := f.Len()
	for name, m := range map[string]int{
		ColRace: len(f.Race), ColAge: len(f.Age), ColSex: len(f.Sex),
		ColInsured: len(f.Insured), ColMarried: len(f.Married),
		ColCity: len(f.City), ColPolicy: len(f.Policy),
	} {
		if m != n {
			return fmt.Errorf("data: column %s has %d rows, want %d", name, m, n)
		}
	}
	policy := make(map[string]float64)
	for i := 0; i < n; i++ {
		if f.Survived[i] != 0 && f.Survived[i] != 1 {
			return fmt.Errorf("data: row %d: survived must be 0 or 1, got %g", i, f.Survived[i])
		}
		if !levelOK(f.Race[i], RaceLevels) {
			return fmt.Errorf("data: row %d: unknown race %q", i, f.Race[i])
		}
		if f.Sex[i] != "" && !levelOK(f.Sex[i], SexLevels) {
			return fmt.Errorf("data: row %d: unknown sex %q", i, f.Sex[i])
		}
		if f.Insured[i] != "" && !levelOK(f.Insured[i], YesNoLevels) {
			return fmt.Errorf("data: row %d: unknown insured value %q", i, f.Insured[i])
		}
		if f.Married[i] != "" && !levelOK(f.Married[i], YesNoLevels) {
			return fmt.Errorf("data: row %d: unknown married value %q", i, f.Married[i])
		}
		if f.City[i] == "" {
			return fmt.Errorf("data: row %d: missing city", i)
		}
		if math.IsNaN(f.Policy[i]) {
			return fmt.Errorf("data: row %d: missing policy index", i)
		}
		if p, ok := policy[f.City[i]]; ok {
			if p != f.Policy[i] {
				return fmt.Errorf("data: city %s has policy values %g and %g", f.City[i], p, f.Policy[i])
			}
		} else {
			policy[f.City[i]] = f.Policy[i]
		}
	}
	return nil
}

// CheckComplete verifies a completed table: the Validate invariants plus no
// missing cell anywhere. Every imputation draw must pass this before it is
// handed to the model stage.
func (f *Frame) CheckComplete() error {
	if err := f.Validate(); err != nil {
		return err
	}
	for i := 0; i < f.Len(); i++ {
		if math.IsNaN(f.Age[i]) {
			return fmt.Errorf("data: row %d: age still missing after imputation", i)
		}
		if f.Sex[i] == "" || f.Insured[i] == "" || f.Married[i] == "" {
			return fmt.Errorf("data: row %d: categorical value still missing after imputation", i)
		}
	}
	return nil
}
