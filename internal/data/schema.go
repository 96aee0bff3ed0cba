package data

import (
	"fmt"
	"strings"
)

// canonical maps a raw categorical value onto its level set, tolerating case
// and surrounding whitespace. Returns "" for a missing value.
func canonical(v string, levels []string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	for _, l := range levels {
		if strings.EqualFold(v, l) {
			return l, nil
		}
	}
	return "", fmt.Errorf("data: value %q not in levels %v", v, levels)
}

// Normalize coerces every categorical column of f onto the fixed level sets.
// This is the single schema-normalization step: it is applied to the raw
// input once and to every completed imputation, so all tables entering the
// model stage carry byte-identical level strings.
func Normalize(f *Frame) error {
	for i := 0; i < f.Len(); i++ {
		var err error
		if f.Race[i], err = canonical(f.Race[i], RaceLevels); err != nil {
			return fmt.Errorf("row %d race: %w", i, err)
		}
		if f.Sex[i], err = canonical(f.Sex[i], SexLevels); err != nil {
			return fmt.Errorf("row %d sex: %w", i, err)
		}
		if f.Insured[i], err = canonical(f.Insured[i], YesNoLevels); err != nil {
			return fmt.Errorf("row %d insured: %w", i, err)
		}
		if f.Married[i], err = canonical(f.Married[i], YesNoLevels); err != nil {
			return fmt.Errorf("row %d married: %w", i, err)
		}
		f.City[i] = strings.TrimSpace(f.City[i])
	}
	return nil
}

// NormalizeAll applies Normalize to a set of completed tables and confirms
// they agree on row count. Mismatched level sets across completed tables
// break pooling, so a failure here is fatal.
func NormalizeAll(frames []*Frame) error {
	if len(frames) == 0 {
		return fmt.Errorf("data: no completed tables")
	}
	n := frames[0].Len()
	for k, f := range frames {
		if f.Len() != n {
			return fmt.Errorf("data: completed table %d has %d rows, want %d", k, f.Len(), n)
		}
		if err := Normalize(f); err != nil {
			return fmt.Errorf("data: completed table %d: %w", k, err)
		}
		if err := f.CheckComplete(); err != nil {
			return fmt.Errorf("data: completed table %d: %w", k, err)
		}
	}
	return nil
}
