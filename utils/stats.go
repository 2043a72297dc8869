package utils

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	Regenerations        int
	StartTime            time.Time

	// population keeps one sample per generation for the end of run summary
	population []float64
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}
	s.population = append(s.population, float64(population))

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// Population returns a copy of the recorded population series
func (s *Stats) Population() []float64 {
	out := make([]float64, len(s.population))
	copy(out, s.population)
	return out
}

// PopulationSummary returns the mean and standard deviation of all samples
func (s *Stats) PopulationSummary() (mean, stddev float64) {
	switch len(s.population) {
	case 0:
		return 0, 0
	case 1:
		return s.population[0], 0
	}
	return stat.MeanStdDev(s.population, nil)
}

// PeakPopulation returns the largest recorded population
func (s *Stats) PeakPopulation() int {
	peak := 0.0
	for _, p := range s.population {
		peak = max(peak, p)
	}
	return int(peak)
}
