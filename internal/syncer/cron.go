package syncer

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
)

// Scheduler runs the system-wide sync on a cron cadence.
type Scheduler struct {
	engine       *cron.Cron
	orchestrator *Orchestrator
	spec         string
}

// NewScheduler creates a scheduler around the orchestrator. The spec is a
// standard cron expression or a descriptor like "@hourly".
func NewScheduler(o *Orchestrator, spec string) *Scheduler {
	return &Scheduler{
		engine:       cron.New(),
		orchestrator: o,
		spec:         spec,
	}
}

// Start registers the sync job and starts the engine.
func (s *Scheduler) Start() error {
	_, err := s.engine.AddFunc(s.spec, s.run)
	if err != nil {
		return err
	}
	s.engine.Start()
	logger.Info("scheduled sync started", "spec", s.spec)
	return nil
}

// Stop stops the engine and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.engine.Stop()
	<-ctx.Done()
	logger.Info("scheduled sync stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	results, err := s.orchestrator.SyncAll(ctx, "")
	if err != nil {
		logger.Error("scheduled sync failed", "error", err.Error())
		return
	}

	var failed int
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	logger.Info("scheduled sync complete", "connections", len(results), "failed", failed)
}
