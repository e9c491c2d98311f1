// Package scheduler drives the periodic reservation sweep with a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/config"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/tasks"
)

// SweepScheduler periodically expires stale reservations. When a task
// client is configured the sweep runs through the queue, so a crashed
// sweep is retried; otherwise it calls the engine directly.
type SweepScheduler struct {
	sweeper    tasks.ReservationSweeper
	taskClient *tasks.Client
	cfg        config.Sweep

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	watchCtx   context.Context
	cancelFunc context.CancelFunc
}

// NewSweepScheduler creates a new scheduler instance. taskClient may be
// nil.
func NewSweepScheduler(sweeper tasks.ReservationSweeper, taskClient *tasks.Client, cfg config.Sweep) *SweepScheduler {
	return &SweepScheduler{
		sweeper:    sweeper,
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the sweep is enabled.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Reservation sweep scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reservation sweep '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	s.watchCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Reservation sweep scheduler: started with schedule '%s'", s.cfg.Schedule)

	watchCtx := s.watchCtx
	go func() {
		<-watchCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep to
// complete.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		// Release the watcher goroutine started in Start
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Reservation sweep scheduler: stopped")
}

// runSweep is the cron callback.
func (s *SweepScheduler) runSweep() {
	if s.taskClient != nil {
		if _, err := s.taskClient.Add(tasks.SweepReservationsTask{}).Save(); err != nil {
			log.Printf("Reservation sweep: failed to enqueue task: %v", err)
		}
		return
	}

	expired, err := s.sweeper.SweepExpiredReservations(lending.SystemActor)
	if err != nil {
		log.Printf("Reservation sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Reservation sweep: cancelled %d expired reservations", expired)
	}
}
