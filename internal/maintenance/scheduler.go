package maintenance

import (
	"context"
	"sync"
	"time"

	"auto_service_backend/pkg/utils"
)

const runTimeout = 2 * time.Minute

// Scheduler runs the maintenance jobs periodically in the background.
// The daily guard inside Runner keeps frequent ticks cheap.
type Scheduler struct {
	runner     *Runner
	interval   time.Duration
	runOnStart bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(runner *Runner, interval time.Duration, runOnStart bool) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{runner: runner, interval: interval, runOnStart: runOnStart}
}

// Start launches the background loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Stop halts the loop and waits for a run in progress to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()
	<-done
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if s.runOnStart {
		s.runOnce(stop)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.runOnce(stop)
		}
	}
}

// runOnce runs every job. Failures are logged and left for the next tick.
func (s *Scheduler) runOnce(stop <-chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	res, err := s.runner.RunAll(ctx, false)
	if err != nil {
		utils.LogError(err, "Maintenance run failed")
		return
	}
	utils.LogDebug("Maintenance run finished", map[string]interface{}{
		"archived":        res.Archive.ArchivedCount,
		"archive_skipped": res.Archive.Skipped,
		"reports":         len(res.Reports.Dates),
		"reports_skipped": res.Reports.Skipped,
	})
}
