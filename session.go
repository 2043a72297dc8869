package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sheikhrachel/go-gol3d/model"
	"github.com/sheikhrachel/go-gol3d/recorder"
	"github.com/sheikhrachel/go-gol3d/report"
	"github.com/sheikhrachel/go-gol3d/stream"
	"github.com/sheikhrachel/go-gol3d/utils"
)

// session wires the optional run observers: the SQLite recorder, the
// WebSocket stream and the end of run reports
type session struct {
	ctx    context.Context
	config utils.Config
	runID  string

	rec *recorder.Recorder
	hub *stream.Hub

	observed         int
	regenerationGens []int
}

func openSession(ctx context.Context, config utils.Config, lattice *model.Lattice) *session {
	s := &session{
		ctx:    ctx,
		config: config,
		runID:  uuid.New().String(),
	}

	if config.RecordPath != "" {
		rec, err := recorder.Open(config.RecordPath)
		if err != nil {
			utils.Logf("recorder disabled: %v", err)
		} else {
			run, err := rec.StartRun(ctx, recorder.Run{
				Width:        lattice.GetWidth(),
				Height:       lattice.GetHeight(),
				Depth:        lattice.GetDepth(),
				RuleSet:      lattice.Rules().String(),
				Neighborhood: lattice.Neighborhood().Name,
				SeedPolicy:   lattice.SeedPolicy(),
				Seed:         lattice.Seed(),
			})
			if err != nil {
				utils.Logf("recorder disabled: %v", err)
				rec.Close()
			} else {
				s.rec = rec
				s.runID = run.ID
			}
		}
	}

	if config.StreamAddr != "" {
		s.hub = stream.NewHub()
		go func() {
			if err := stream.Serve(ctx, config.StreamAddr, s.hub); err != nil {
				utils.Logf("stream server stopped: %v", err)
			}
		}()
		fmt.Printf("Streaming frames on ws://%s/ws\n", config.StreamAddr)
	}

	return s
}

// observe hands the current generation to the recorder and the stream
func (s *session) observe(lattice *model.Lattice, livingCells int, regenerated bool) {
	s.observed++
	if regenerated {
		s.regenerationGens = append(s.regenerationGens, lattice.Generation())
	}

	if s.rec != nil {
		err := s.rec.RecordGeneration(s.ctx, s.runID, recorder.Generation{
			Generation:  lattice.Generation(),
			Alive:       livingCells,
			Fingerprint: lattice.Fingerprint(),
			Regenerated: regenerated,
		})
		if err != nil {
			utils.Logf("record generation %d: %v", lattice.Generation(), err)
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(stream.NewFrame(s.runID, lattice))
	}
}

// close finishes the recorded run and writes the reports
func (s *session) close(stats *utils.Stats, lattice *model.Lattice) {
	if s.rec != nil {
		// The run context may already be cancelled on Ctrl+C
		if err := s.rec.FinishRun(context.Background(), s.runID, s.observed); err != nil {
			utils.Logf("finish run: %v", err)
		}
		if err := s.rec.Close(); err != nil {
			utils.Logf("close recorder: %v", err)
		}
	}

	if s.config.ReportDir == "" {
		return
	}
	populationPath := filepath.Join(s.config.ReportDir, report.PopulationFile)
	if err := report.PopulationPlot(populationPath, stats.Population(), s.regenerationGens); err != nil {
		utils.Logf("population report: %v", err)
	}
	scatterPath := filepath.Join(s.config.ReportDir, report.ScatterFile)
	title := fmt.Sprintf("Run %s, generation %d", s.runID, lattice.Generation())
	if err := report.WriteLatticeScatter(scatterPath, title, lattice.Snapshot()); err != nil {
		utils.Logf("lattice report: %v", err)
	}
	fmt.Printf("Reports written to %s\n", s.config.ReportDir)
}
