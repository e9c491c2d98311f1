// Package cli implements the maintenance commands that run outside the
// HTTP server: bootstrapping the first administrator account and the
// one-shot reservation sweep.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/config"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// CreateAdminCommand creates an administrator account from the command
// line, typically to bootstrap a fresh installation.
type CreateAdminCommand struct {
	DatabasePath string
	Email        string
	FirstName    string
	LastName     string
	Matricula    string
	Password     string
	Superuser    bool
}

// NewCreateAdminCommand creates a new CreateAdminCommand.
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("createadmin", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Email, "email", "", "Login e-mail for the new account (required)")
	fs.StringVar(&cmd.FirstName, "name", "", "First name (required)")
	fs.StringVar(&cmd.LastName, "lastname", "", "Last name")
	fs.StringVar(&cmd.Matricula, "matricula", "", "Institutional registration number")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (required)")
	fs.BoolVar(&cmd.Superuser, "superuser", false, "Also grant the superuser flag")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s createadmin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an ADMIN account, for bootstrapping a fresh installation.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s createadmin -email admin@escola.br -name Maria -password s3nh4forte\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s createadmin -email root@escola.br -name Root -password s3nh4forte -superuser\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" || cmd.FirstName == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("-email, -name and -password are required")
	}
	return nil
}

// Run executes the command.
func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	user, err := service.CreateUser(auth.CreateUserInput{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Email:     cmd.Email,
		Matricula: cmd.Matricula,
		Password:  cmd.Password,
		Role:      entities.UserRoleAdmin,
		Superuser: cmd.Superuser,
		Active:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("Administrator %s <%s> created (id %d)\n", user.FullName(), user.Email, user.ID)
	return nil
}
