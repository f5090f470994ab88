package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lvsim/internal/config"
)

// resolved parses args against the critical subcommand and returns the
// configuration it would run.
func resolved(t *testing.T, args ...string) *config.Config {
	t.Helper()
	f := &flags{}
	root := newRootCmd(f)
	var got *config.Config
	for _, c := range root.Commands() {
		if c.Name() == "critical" {
			c.RunE = func(cmd *cobra.Command, _ []string) error {
				var err error
				got, err = resolveConfig(cmd, f)
				return err
			}
		}
	}
	root.SetArgs(append([]string{"critical"}, args...))
	require.NoError(t, root.Execute())
	return got
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg := resolved(t)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestResolveConfigFlagsOverride(t *testing.T) {
	cfg := resolved(t, "-a", "0.15", "--y0", "19", "--integrator", "rk4")
	assert.Equal(t, 0.15, cfg.Params.A)
	assert.Equal(t, 0.02, cfg.Params.B)
	assert.Equal(t, 19.0, cfg.Initial.Y0)
	assert.Equal(t, 40.0, cfg.Initial.X0)
	assert.Equal(t, "rk4", cfg.Integrator)
}

func TestResolveConfigPresetAndFile(t *testing.T) {
	cfg := resolved(t, "--preset", "prey-boost")
	assert.Equal(t, 0.15, cfg.Params.A)
	assert.Equal(t, 19.0, cfg.Initial.Y0)

	// Flags left at their defaults do not clobber the preset.
	cfg = resolved(t, "--preset", "prey-boost", "--horizon", "50")
	assert.Equal(t, 0.15, cfg.Params.A)
	assert.Equal(t, 50.0, cfg.Horizon)

	path := filepath.Join(t.TempDir(), "lv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params:\n  c: 0.4\n"), 0o644))
	cfg = resolved(t, "--config", path, "-d", "0.02")
	assert.Equal(t, 0.4, cfg.Params.C)
	assert.Equal(t, 0.02, cfg.Params.D)
	assert.Equal(t, 0.1, cfg.Params.A)
}

func TestResolveConfigLogisticCapacity(t *testing.T) {
	cfg := resolved(t, "--model", "logistic")
	assert.Equal(t, "logistic", cfg.Model)
	assert.Equal(t, config.DefaultK, cfg.Params.K)
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	root := newRootCmd(&flags{})
	root.SetArgs([]string{"critical", "--preset", "nope"})
	assert.ErrorContains(t, root.Execute(), "unknown preset")
}
