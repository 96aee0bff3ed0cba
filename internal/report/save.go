// Package report writes the terminal artifacts: the serialized fit, the
// disparity and coefficient tables, and the disparity figure.
package report

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"os"
	"strconv"

	"github.com/brookluers/survgap/internal/model"
	"github.com/brookluers/survgap/internal/predict"
)

// SaveModel serializes the pooled fit as gzipped gob.
func SaveModel(res *model.Result, path string) error {

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	z := gzip.NewWriter(f)
	enc := gob.NewEncoder(z)
	if err := enc.Encode(res); err != nil {
		f.Close()
		return fmt.Errorf("report: encoding model: %w", err)
	}
	if err := z.Close(); err != nil { // order is important here
		f.Close()
		return fmt.Errorf("report: %w", err)
	}
	return f.Close()
}

// LoadModel reads a fit written by SaveModel.
func LoadModel(path string) (*model.Result, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	z, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	defer z.Close()

	var res model.Result
	if err := gob.NewDecoder(z).Decode(&res); err != nil {
		return nil, fmt.Errorf("report: decoding model: %w", err)
	}
	return &res, nil
}

// WriteDisparity writes the per-grid-point summary table.
func WriteDisparity(sums []predict.Summary, path string) error {

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"policy_index", "mean_diff", "lower", "upper"}); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	for _, s := range sums {
		rec := []string{
			fmtF(s.Policy), fmtF(s.Mean), fmtF(s.Lower), fmtF(s.Upper),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteCoefficients writes the pooled fixed-effect table.
func WriteCoefficients(coefs []model.CoefSummary, path string) error {

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"term", "estimate", "lower", "upper"}); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	for _, c := range coefs {
		rec := []string{c.Term, fmtF(c.Estimate), fmtF(c.Lower), fmtF(c.Upper)}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func fmtF(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
