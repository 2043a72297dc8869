package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Seed policies understood by the lattice
const (
	SeedRandom       = "random"
	SeedParity       = "parity"
	SeedParityLegacy = "parity-legacy"
	SeedBlinkers     = "blinkers"
)

// ErrInvalidConfig is returned for configuration values the lattice can't run with
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the configuration for the simulation
type Config struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Depth    int     `json:"depth"`
	CellSize float32 `json:"cell_size"`

	SeedPolicy    string  `json:"seed_policy"`
	Seed          uint64  `json:"seed"`
	RandomDensity float64 `json:"random_density"`

	RuleSet      string `json:"rule_set"`
	Neighborhood string `json:"neighborhood"`

	HistoryWindow int `json:"history_window"`
	CyclePeriod   int `json:"cycle_period"`

	UseParallel       bool `json:"use_parallel"`
	UseMemoryPool     bool `json:"use_memory_pool"`
	UseBoundedLattice bool `json:"use_bounded_lattice"`

	FrameRate      time.Duration `json:"frame_rate"`
	MaxGenerations int           `json:"max_generations"`
	RefreshEvery   int           `json:"refresh_every"`
	ShowSlice      bool          `json:"show_slice"`

	RecordPath string `json:"record_path"`
	ReportDir  string `json:"report_dir"`
	StreamAddr string `json:"stream_addr"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Width:             24,
		Height:            24,
		Depth:             24,
		CellSize:          1.0,
		SeedPolicy:        SeedRandom,
		RandomDensity:     0.10,
		RuleSet:           "life",
		Neighborhood:      "von-neumann",
		HistoryWindow:     5,
		CyclePeriod:       1,
		UseParallel:       true,
		UseMemoryPool:     true,
		UseBoundedLattice: true, // Skip empty space when the birth set allows it
		FrameRate:         50 * time.Millisecond,
		MaxGenerations:    1000,
		ShowSlice:         true,
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] file: %+v", filename)
	}

	return config, nil
}

// Validate checks the values the lattice depends on. Rule set and
// neighborhood names are resolved by the lattice itself.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "dimensions must be positive, got %dx%dx%d", c.Width, c.Height, c.Depth)
	}
	if c.CellSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "cell_size must be positive, got %v", c.CellSize)
	}
	if c.RandomDensity < 0 || c.RandomDensity > 1 {
		return errors.Wrapf(ErrInvalidConfig, "random_density must be within [0,1], got %v", c.RandomDensity)
	}
	// A single entry window always equals itself
	if c.HistoryWindow < 2 {
		return errors.Wrapf(ErrInvalidConfig, "history_window must be at least 2, got %d", c.HistoryWindow)
	}
	// A cycle only counts once the window holds it twice
	if c.CyclePeriod < 1 || c.CyclePeriod*2 > c.HistoryWindow {
		return errors.Wrapf(ErrInvalidConfig, "cycle_period must be within [1,%d], got %d", c.HistoryWindow/2, c.CyclePeriod)
	}
	switch c.SeedPolicy {
	case SeedRandom, SeedParity, SeedParityLegacy, SeedBlinkers:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown seed_policy %q", c.SeedPolicy)
	}
	return nil
}
