package data_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brookluers/survgap/internal/data"
)

func smallFrame() *data.Frame {
	return &data.Frame{
		Survived: []float64{1, 0, 1, 1},
		Race:     []string{"White", "Black", "Black", "White"},
		Age:      []float64{40, 52, math.NaN(), 61},
		Sex:      []string{"Female", "Male", "", "Female"},
		Insured:  []string{"Yes", "No", "Yes", ""},
		Married:  []string{"No", "Yes", "Yes", "No"},
		City:     []string{"a", "a", "b", "b"},
		Policy:   []float64{0.2, 0.2, 0.7, 0.7},
	}
}

func TestValidate(t *testing.T) {
	f := smallFrame()
	require.NoError(t, f.Validate())
	require.Equal(t, 3, f.MissingCount()) // one age, one sex, one insured
}

func TestValidatePolicyNotConstantWithinCity(t *testing.T) {
	f := smallFrame()
	f.Policy[1] = 0.3
	err := f.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "policy")
}

func TestValidateUnknownLevel(t *testing.T) {
	f := smallFrame()
	f.Race[0] = "Other"
	require.Error(t, f.Validate())
}

func TestNormalizeCoercesCaseAndSpace(t *testing.T) {
	f := smallFrame()
	f.Race[0] = " white "
	f.Sex[1] = "MALE"
	f.Insured[0] = "yes"
	require.NoError(t, data.Normalize(f))
	require.Equal(t, "White", f.Race[0])
	require.Equal(t, "Male", f.Sex[1])
	require.Equal(t, "Yes", f.Insured[0])
}

func TestNormalizeRejectsUnknownValue(t *testing.T) {
	f := smallFrame()
	f.Married[2] = "Divorced"
	require.Error(t, data.Normalize(f))
}

func TestCloneIsDeep(t *testing.T) {
	f := smallFrame()
	g := f.Clone()
	g.Age[0] = 99
	g.Race[0] = "Black"
	require.Equal(t, 40.0, f.Age[0])
	require.Equal(t, "White", f.Race[0])
}

func TestSimulateInvariants(t *testing.T) {
	sc := data.DefaultSim()
	sc.N = 500
	sc.Cities = 6
	f := data.Simulate(sc)

	require.Equal(t, 500, f.Len())
	require.NoError(t, f.Validate())
	require.Len(t, f.Cities(), 6)

	// Policy index is a city-level value broadcast onto every resident.
	policy := make(map[string]float64)
	for i := 0; i < f.Len(); i++ {
		if p, ok := policy[f.City[i]]; ok {
			require.Equal(t, p, f.Policy[i])
		} else {
			policy[f.City[i]] = f.Policy[i]
		}
	}

	require.Greater(t, f.MissingCount(), 0)
}

func TestSimulateReproducible(t *testing.T) {
	sc := data.DefaultSim()
	sc.N = 200
	// No missingness so the frames compare exactly (NaN breaks DeepEqual).
	sc.MissAge, sc.MissSex, sc.MissInsured, sc.MissMarried = 0, 0, 0, 0
	a := data.Simulate(sc)
	b := data.Simulate(sc)
	require.Equal(t, a, b)
}
