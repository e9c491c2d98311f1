package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/config"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

// SweepCommand runs the reservation sweep once and exits. Useful for
// external schedulers and for clearing a backlog by hand.
type SweepCommand struct {
	DatabasePath string
}

// NewSweepCommand creates a new SweepCommand.
func NewSweepCommand() *SweepCommand {
	return &SweepCommand{}
}

// ParseFlags parses command line flags.
func (cmd *SweepCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sweep [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Cancel expired reservations and restore their stock, then exit.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the command.
func (cmd *SweepCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	engine := lending.NewEngine(db.DB, lending.Config{
		LoanPeriodDays:  cfg.Lending.LoanPeriodDays,
		ReservationHold: cfg.Lending.ReservationHold,
	})

	expired, err := engine.SweepExpiredReservations(lending.SystemActor)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Cancelled %d expired reservation(s)\n", expired)
	return nil
}
