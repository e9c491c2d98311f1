package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

// ReservationSweeper cancels expired reservations and restores their
// stock. The lending engine implements it.
type ReservationSweeper interface {
	SweepExpiredReservations(actor lending.Actor) (int, error)
}

// SweepReservationsTask cancels reservations whose pickup window has
// lapsed.
type SweepReservationsTask struct{}

// Config returns the queue configuration for sweep tasks.
func (t SweepReservationsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sweep_reservations",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepReservationsProcessor creates a processor function for
// SweepReservationsTask.
func SweepReservationsProcessor(sweeper ReservationSweeper) backlite.QueueProcessor[SweepReservationsTask] {
	return func(ctx context.Context, task SweepReservationsTask) error {
		if sweeper == nil {
			return fmt.Errorf("reservation sweeper not configured")
		}

		expired, err := sweeper.SweepExpiredReservations(lending.SystemActor)
		if err != nil {
			return fmt.Errorf("sweep reservations: %w", err)
		}

		if expired > 0 {
			log.Printf("[TASK] Cancelled %d expired reservations", expired)
		}
		return nil
	}
}

// NewSweepReservationsQueue creates a backlite queue for reservation
// sweep tasks.
func NewSweepReservationsQueue(sweeper ReservationSweeper) backlite.Queue {
	return backlite.NewQueue(SweepReservationsProcessor(sweeper))
}
