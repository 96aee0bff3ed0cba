package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SimConfig controls the demonstration data generator. The fixture exists so
// the pipeline can be exercised end to end; a real analysis replaces it with
// a CSV conforming to the same schema.
type SimConfig struct {
	N      int
	Cities int
	Seed   uint64

	// True effects on the log-odds scale.
	Intercept   float64
	Race        float64
	Policy      float64
	Interaction float64
	Age         float64
	Male        float64
	Insured     float64
	Married     float64

	// City random-intercept scale.
	CitySD float64

	// Per-column missingness rates.
	MissAge, MissSex, MissInsured, MissMarried float64
}

// DefaultSim mirrors the demonstration scenario: a negative race effect that
// narrows as the policy index rises.
func DefaultSim() SimConfig {
	return SimConfig{
		N:           4000,
		Cities:      12,
		Seed:        20260412,
		Intercept:   0.8,
		Race:        -0.6,
		Policy:      0.3,
		Interaction: 0.5,
		Age:         -0.02,
		Male:        -0.15,
		Insured:     0.4,
		Married:     0.1,
		CitySD:      0.3,
		MissAge:     0.10,
		MissSex:     0.05,
		MissInsured: 0.08,
		MissMarried: 0.07,
	}
}

// Simulate draws a city-clustered person-level table with missingness in the
// covariates. Within each city the policy index is a single shared value.
func Simulate(sc SimConfig) *Frame {

	src := rand.NewSource(sc.Seed)
	rng := rand.New(src)
	agd := distuv.Normal{Mu: 45, Sigma: 12, Src: src}
	und := distuv.Uniform{Min: 0, Max: 1, Src: src}
	cityEff := distuv.Normal{Mu: 0, Sigma: sc.CitySD, Src: src}

	policy := make([]float64, sc.Cities)
	ueff := make([]float64, sc.Cities)
	for k := 0; k < sc.Cities; k++ {
		// Spread cities across the index range, with jitter.
		policy[k] = math.Round(100*((float64(k)+0.5)/float64(sc.Cities)+0.05*(und.Rand()-0.5))) / 100
		if policy[k] < 0 {
			policy[k] = 0
		}
		if policy[k] > 1 {
			policy[k] = 1
		}
		ueff[k] = cityEff.Rand()
	}

	f := &Frame{
		Survived: make([]float64, sc.N),
		Race:     make([]string, sc.N),
		Age:      make([]float64, sc.N),
		Sex:      make([]string, sc.N),
		Insured:  make([]string, sc.N),
		Married:  make([]string, sc.N),
		City:     make([]string, sc.N),
		Policy:   make([]float64, sc.N),
	}

	for i := 0; i < sc.N; i++ {
		k := rng.Intn(sc.Cities)
		f.City[i] = fmt.Sprintf("city_%02d", k)
		f.Policy[i] = policy[k]

		black := und.Rand() < 0.35
		male := und.Rand() < 0.5
		insured := und.Rand() < 0.8
		married := und.Rand() < 0.5
		age := agd.Rand()

		eta := sc.Intercept + sc.Policy*policy[k] + sc.Age*(age-45) + ueff[k]
		if black {
			eta += sc.Race + sc.Interaction*policy[k]
		}
		if male {
			eta += sc.Male
		}
		if insured {
			eta += sc.Insured
		}
		if married {
			eta += sc.Married
		}
		if und.Rand() < 1/(1+math.Exp(-eta)) {
			f.Survived[i] = 1
		}

		f.Race[i] = "White"
		if black {
			f.Race[i] = "Black"
		}
		f.Age[i] = age
		f.Sex[i] = "Female"
		if male {
			f.Sex[i] = "Male"
		}
		f.Insured[i] = "No"
		if insured {
			f.Insured[i] = "Yes"
		}
		f.Married[i] = "No"
		if married {
			f.Married[i] = "Yes"
		}

		// Missingness is applied after the outcome draw, so survival is
		// generated from the complete covariates.
		if und.Rand() < sc.MissAge {
			f.Age[i] = math.NaN()
		}
		if und.Rand() < sc.MissSex {
			f.Sex[i] = ""
		}
		if und.Rand() < sc.MissInsured {
			f.Insured[i] = ""
		}
		if und.Rand() < sc.MissMarried {
			f.Married[i] = ""
		}
	}

	return f
}

// WriteCSV writes the frame in the format LoadCSV reads back: NaN for missing
// floats, empty fields for missing strings.
func WriteCSV(f *Frame, path string) error {

	fid, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	defer fid.Close()

	w := csv.NewWriter(fid)
	header := []string{ColSurvived, ColRace, ColAge, ColSex, ColInsured, ColMarried, ColCity, ColPolicy}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	for i := 0; i < f.Len(); i++ {
		rec := []string{
			strconv.FormatFloat(f.Survived[i], 'f', 0, 64),
			f.Race[i],
			strconv.FormatFloat(f.Age[i], 'g', -1, 64),
			f.Sex[i],
			f.Insured[i],
			f.Married[i],
			f.City[i],
			strconv.FormatFloat(f.Policy[i], 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("data: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
