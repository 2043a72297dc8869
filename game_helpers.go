package main

import (
	"fmt"
	"time"

	"github.com/sheikhrachel/go-gol3d/model"
	"github.com/sheikhrachel/go-gol3d/utils"
)

// initializeGame sets up the lattice and its observers
func initializeGame(config utils.Config) (
	*model.Lattice,
	*model.TerminalRenderer,
	*utils.Stats,
	error,
) {
	lattice, err := model.NewLattice(config)
	if err != nil {
		return nil, nil, nil, err
	}
	lattice.Populate()

	renderer := &model.TerminalRenderer{}
	stats := utils.NewStats()

	return lattice, renderer, stats, nil
}

// displayGameInfo shows the initial simulation information
func displayGameInfo(config utils.Config, lattice *model.Lattice) {
	fmt.Printf("Features: Memory Pool: %v, Bounded: %v, Parallel: %v\n",
		config.UseMemoryPool, config.UseBoundedLattice, config.UseParallel)
	fmt.Printf("Lattice: %dx%dx%d (cell size %.2f) | Rules: %s (%s) | Seed: %s #%d\n",
		lattice.GetWidth(), lattice.GetHeight(), lattice.GetDepth(), lattice.GetCellSize(),
		lattice.Rules(), lattice.Neighborhood().Name, lattice.SeedPolicy(), lattice.Seed())
	fmt.Printf("Initial living cells: %d\n", lattice.CountLivingCells())
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// updateGameState updates the stats and returns status information
func updateGameState(
	lattice *model.Lattice,
	lastFrameTime time.Time,
	stats *utils.Stats,
	regenerated bool,
) (int, float64, string) {
	livingCells := lattice.CountLivingCells()
	density := float64(livingCells) / float64(lattice.Len()) * 100

	// Update performance stats
	frameDuration := time.Since(lastFrameTime)
	stats.Update(lattice.Generation(), livingCells, frameDuration)
	stats.Regenerations = lattice.Regenerations()

	status := "Active"
	if regenerated {
		status = fmt.Sprintf("Regenerated (#%d)", lattice.Regenerations())
	}
	if livingCells == 0 {
		status = "Extinct"
	}

	return livingCells, density, status
}

// displayGameStatus shows the current simulation status
func displayGameStatus(
	lattice *model.Lattice,
	livingCells int,
	density float64,
	status string,
	config utils.Config,
	stats *utils.Stats,
	lastRefreshGen int,
) {
	// Show bounding box info for bounded lattices
	boundingInfo := ""
	if config.UseBoundedLattice {
		boundingInfo = fmt.Sprintf(" | Bounding box: %d cells", lattice.GetBoundingBoxSize())
	}

	generation := lattice.Generation()
	fmt.Printf("Gen: %d | Living: %d | Density: %.1f%% | Status: %s%s\n",
		generation, livingCells, density, status, boundingInfo)
	fmt.Printf("Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, time.Since(stats.StartTime).Seconds())

	// Show time since last re-seed
	if generation > lastRefreshGen {
		fmt.Printf("Generations since re-seed: %d\n", generation-lastRefreshGen)
	}
	fmt.Println()
}

// shouldRefresh reports whether the driver re-seeds on its own schedule.
// Stagnation is handled by the lattice itself.
func shouldRefresh(generation int, config utils.Config) bool {
	return config.RefreshEvery > 0 && generation > 0 && generation%config.RefreshEvery == 0
}

// printFinalStats prints the end of run summary
func printFinalStats(lattice *model.Lattice, stats *utils.Stats) {
	mean, stddev := stats.PopulationSummary()
	fmt.Printf("Final stats: %d generations in %.1f seconds, %d regenerations\n",
		lattice.Generation(), time.Since(stats.StartTime).Seconds(), lattice.Regenerations())
	fmt.Printf("Population: mean %.1f, stddev %.1f, peak %d\n", mean, stddev, stats.PeakPopulation())
}
