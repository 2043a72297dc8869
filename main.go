package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol3d/utils"
)

const defaultConfigPath = "config.json"

func main() {
	configPath := defaultConfigPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Println("Invalid configuration:", err)
			os.Exit(1)
		}
		fmt.Printf("Using default configuration (%s not found)\n", configPath)
		config = utils.DefaultConfig()
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lattice, renderer, stats, err := initializeGame(config)
	if err != nil {
		fmt.Println("Error creating lattice:", err)
		os.Exit(1)
	}
	displayGameInfo(config, lattice)

	sess := openSession(ctx, config, lattice)
	defer sess.close(stats, lattice)

	// Main simulation loop
	var (
		lastRefreshGen = 0
		lastFrameTime  = time.Now()
		regenerated    = false
	)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n🛑 Shutting down gracefully...")
			printFinalStats(lattice, stats)
			return
		default:
			// Continue with simulation loop
		}

		frameStart := time.Now()
		if config.ShowSlice {
			renderer.Clear()
		}

		livingCells, density, status := updateGameState(lattice, lastFrameTime, stats, regenerated)
		lastFrameTime = frameStart

		displayGameStatus(lattice, livingCells, density, status, config, stats, lastRefreshGen)
		if config.ShowSlice {
			renderer.DisplaySlice(lattice, lattice.GetDepth()/2)
		}
		sess.observe(lattice, livingCells, regenerated)

		// Check for max generations limit
		if config.MaxGenerations > 0 && lattice.Generation() >= config.MaxGenerations {
			fmt.Printf("\n🏁 Reached maximum generations limit (%d)\n", config.MaxGenerations)
			break
		}

		before := lattice.Regenerations()
		if shouldRefresh(lattice.Generation(), config) {
			fmt.Printf("🔄 Periodic refresh at generation %d\n", lattice.Generation())
			lattice.Regenerate()
			lastRefreshGen = lattice.Generation()
		}

		lattice.Step()
		regenerated = lattice.Regenerations() > before
		if regenerated {
			lastRefreshGen = lattice.Generation()
		}

		// Wait before next frame
		select {
		case <-ctx.Done():
		case <-time.After(config.FrameRate):
		}
	}
	printFinalStats(lattice, stats)
}
