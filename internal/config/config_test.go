package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brookluers/survgap/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := []byte("seed: 7\nimputations: 3\nchains: 2\ngrid:\n  lo: 0.2\n  hi: 0.8\n  step: 0.1\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, uint64(7), cfg.Seed)
	require.Equal(t, 3, cfg.Imputations)
	require.Equal(t, 2, cfg.Chains)
	require.Equal(t, 0.2, cfg.Grid.Lo)
	// Untouched knobs keep their defaults.
	require.Equal(t, config.Default().Iter, cfg.Iter)
	require.Equal(t, config.Default().Reference, cfg.Reference)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*config.Config)
	}{
		{"no imputations", func(c *config.Config) { c.Imputations = 0 }},
		{"warmup past iter", func(c *config.Config) { c.Warmup = c.Iter }},
		{"zero thin", func(c *config.Config) { c.Thin = 0 }},
		{"thin exceeds kept draws", func(c *config.Config) { c.Thin = c.Iter - c.Warmup + 1 }},
		{"accept rate 1", func(c *config.Config) { c.TargetAccept = 1 }},
		{"negative step", func(c *config.Config) { c.Grid.Step = -0.1 }},
		{"inverted grid", func(c *config.Config) { c.Grid.Lo = 2; c.Grid.Hi = 1 }},
		{"unknown sex", func(c *config.Config) { c.Reference.Sex = "X" }},
		{"unknown insured", func(c *config.Config) { c.Reference.Insured = "??" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mut(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
