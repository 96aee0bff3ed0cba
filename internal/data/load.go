package data

import (
	"fmt"
	"os"

	"github.com/kshedden/dstream/dstream"
)

// LoadCSV reads a person-level table from a CSV file with a header row.
// Float columns use the literal NaN for missing values; string columns use
// an empty field. The returned frame has been normalized and validated.
func LoadCSV(path string) (*Frame, error) {

	fid, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	defer fid.Close()

	types := []dstream.VarType{
		{Name: ColSurvived, Type: dstream.Float64},
		{Name: ColAge, Type: dstream.Float64},
		{Name: ColPolicy, Type: dstream.Float64},
		{Name: ColRace, Type: dstream.String},
		{Name: ColSex, Type: dstream.String},
		{Name: ColInsured, Type: dstream.String},
		{Name: ColMarried, Type: dstream.String},
		{Name: ColCity, Type: dstream.String},
	}

	dst := dstream.FromCSV(fid).SetTypes(types).ChunkSize(1000).HasHeader().Done()
	dsc := dstream.MemCopy(dst, false)

	f := &Frame{
		Survived: dstream.GetCol(dsc, ColSurvived).([]float64),
		Age:      dstream.GetCol(dsc, ColAge).([]float64),
		Policy:   dstream.GetCol(dsc, ColPolicy).([]float64),
		Race:     dstream.GetCol(dsc, ColRace).([]string),
		Sex:      dstream.GetCol(dsc, ColSex).([]string),
		Insured:  dstream.GetCol(dsc, ColInsured).([]string),
		Married:  dstream.GetCol(dsc, ColMarried).([]string),
		City:     dstream.GetCol(dsc, ColCity).([]string),
	}

	if f.Len() == 0 {
		return nil, fmt.Errorf("data: %s contains no rows", path)
	}
	if err := Normalize(f); err != nil {
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}
	return f, nil
}
