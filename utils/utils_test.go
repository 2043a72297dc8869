package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -3 }},
		{"zero depth", func(c *Config) { c.Depth = 0 }},
		{"zero cell size", func(c *Config) { c.CellSize = 0 }},
		{"density above one", func(c *Config) { c.RandomDensity = 1.5 }},
		{"empty history", func(c *Config) { c.HistoryWindow = 0 }},
		{"single entry history", func(c *Config) { c.HistoryWindow = 1 }},
		{"zero period", func(c *Config) { c.CyclePeriod = 0 }},
		{"period beyond window", func(c *Config) { c.CyclePeriod = c.HistoryWindow + 1 }},
		{"period equals window", func(c *Config) { c.CyclePeriod = c.HistoryWindow }},
		{"period over half window", func(c *Config) { c.HistoryWindow, c.CyclePeriod = 5, 3 }},
		{"unknown seed policy", func(c *Config) { c.SeedPolicy = "spiral" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"width": 8, "depth": 4, "rule_set": "parity", "seed": 7}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 24, cfg.Height, "unset fields keep defaults")
	assert.Equal(t, 4, cfg.Depth)
	assert.Equal(t, "parity", cfg.RuleSet)
	assert.Equal(t, uint64(7), cfg.Seed)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"width":`), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"width": -1}`), 0o644))
	_, err = LoadConfig(invalid)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestStats(t *testing.T) {
	s := NewStats()
	mean, stddev := s.PopulationSummary()
	assert.Zero(t, mean)
	assert.Zero(t, stddev)

	s.Update(1, 10, 100*time.Millisecond)
	s.Update(2, 20, 100*time.Millisecond)
	s.Update(3, 30, 0)

	assert.Equal(t, 3, s.TotalGenerations)
	assert.InDelta(t, 10.0, s.GenerationsPerSecond, 1e-9)
	assert.Equal(t, []float64{10, 20, 30}, s.Population())
	assert.Equal(t, 30, s.PeakPopulation())

	mean, stddev = s.PopulationSummary()
	assert.InDelta(t, 20.0, mean, 1e-9)
	assert.InDelta(t, 10.0, stddev, 1e-9)
}

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("test message")
	assert.True(t, called)

	called = false
	SetLogger(nil)
	Logf("test message")
	assert.False(t, called)
}
