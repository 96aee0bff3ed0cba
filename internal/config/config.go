// Package config holds the run configuration for the disparity pipeline.
// Every knob is explicit here; no stage reads package-level state, so a run
// is fully determined by one Config value.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Grid describes the policy-index values at which disparities are evaluated.
type Grid struct {
	Lo   float64 `yaml:"lo"`
	Hi   float64 `yaml:"hi"`
	Step float64 `yaml:"step"`
}

// Reference holds the fixed covariate levels used for counterfactual
// prediction. Predictions are conditional on these levels, not marginal over
// the observed covariate distribution.
type Reference struct {
	Age     float64 `yaml:"age"`
	Sex     string  `yaml:"sex"`
	Insured string  `yaml:"insured"`
	Married string  `yaml:"married"`
}

type Config struct {
	Seed uint64 `yaml:"seed"`

	// Multiple imputation
	Imputations int `yaml:"imputations"`
	ImputeIter  int `yaml:"impute_iter"`

	// Sampler
	Chains       int     `yaml:"chains"`
	Iter         int     `yaml:"iter"`
	Warmup       int     `yaml:"warmup"`
	Thin         int     `yaml:"thin"`
	TargetAccept float64 `yaml:"target_accept"`

	Grid      Grid      `yaml:"grid"`
	Reference Reference `yaml:"reference"`

	OutDir string `yaml:"out_dir"`
}

// Default returns the configuration used for the demonstration run.
func Default() Config {
	return Config{
		Seed:         20260412,
		Imputations:  5,
		ImputeIter:   10,
		Chains:       4,
		Iter:         2000,
		Warmup:       1000,
		Thin:         2,
		TargetAccept: 0.3,
		Grid:         Grid{Lo: 0, Hi: 1, Step: 0.05},
		Reference: Reference{
			Age:     45,
			Sex:     "Female",
			Insured: "Yes",
			Married: "No",
		},
		OutDir: "out",
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Imputations < 1:
		return fmt.Errorf("config: imputations must be >= 1, got %d", c.Imputations)
	case c.ImputeIter < 1:
		return fmt.Errorf("config: impute_iter must be >= 1, got %d", c.ImputeIter)
	case c.Chains < 1:
		return fmt.Errorf("config: chains must be >= 1, got %d", c.Chains)
	case c.Warmup >= c.Iter:
		return fmt.Errorf("config: warmup (%d) must be less than iter (%d)", c.Warmup, c.Iter)
	case c.Thin < 1:
		return fmt.Errorf("config: thin must be >= 1, got %d", c.Thin)
	case c.Thin > c.Iter-c.Warmup:
		return fmt.Errorf("config: thin (%d) exceeds the %d post-warmup iterations", c.Thin, c.Iter-c.Warmup)
	case c.TargetAccept <= 0 || c.TargetAccept >= 1:
		return fmt.Errorf("config: target_accept must be in (0, 1), got %g", c.TargetAccept)
	case c.Grid.Step <= 0:
		return fmt.Errorf("config: grid step must be positive, got %g", c.Grid.Step)
	case c.Grid.Hi < c.Grid.Lo:
		return fmt.Errorf("config: grid hi (%g) is below lo (%g)", c.Grid.Hi, c.Grid.Lo)
	}
	if c.Reference.Sex != "Female" && c.Reference.Sex != "Male" {
		return fmt.Errorf("config: reference sex must be Female or Male, got %q", c.Reference.Sex)
	}
	for _, v := range []struct{ name, val string }{
		{"insured", c.Reference.Insured},
		{"married", c.Reference.Married},
	} {
		if v.val != "Yes" && v.val != "No" {
			return fmt.Errorf("config: reference %s must be Yes or No, got %q", v.name, v.val)
		}
	}
	return nil
}
