package lending

import "github.com/yaneduardo117/Biblioteca-escolar/internal/entities"

// Actor identifies who is performing an engine operation. The engine
// never inspects credentials; the HTTP layer authenticates and hands the
// resulting identity down.
type Actor struct {
	UserID    uint
	Role      entities.UserRole
	Superuser bool
}

// SystemActor runs background jobs. It passes every policy check, the
// same way superusers do.
var SystemActor = Actor{Superuser: true}

// Operation names an engine entry point for authorization purposes.
type Operation string

const (
	OpCreateLoan          Operation = "create_loan"
	OpReturnLoan          Operation = "return_loan"
	OpListLoans           Operation = "list_loans"
	OpReserveBook         Operation = "reserve_book"
	OpSweepReservations   Operation = "sweep_reservations"
	OpValidateReservation Operation = "validate_reservation"
)

// policy is the single (operation, role) → allow table. Every engine
// entry point consults it exactly once, so permission rules cannot drift
// between near-identical checks.
var policy = map[Operation]map[entities.UserRole]bool{
	OpCreateLoan: {
		entities.UserRoleLibrarian: true,
		entities.UserRoleAdmin:     true,
	},
	OpReturnLoan: {
		entities.UserRoleLibrarian: true,
		entities.UserRoleAdmin:     true,
	},
	OpListLoans: {
		entities.UserRoleStudent:   true, // scoped to own loans by the engine
		entities.UserRoleLibrarian: true,
		entities.UserRoleAdmin:     true,
	},
	OpReserveBook: {
		entities.UserRoleStudent:   true,
		entities.UserRoleLibrarian: true,
		entities.UserRoleAdmin:     true,
	},
	OpSweepReservations: {
		entities.UserRoleLibrarian: true,
		entities.UserRoleAdmin:     true,
	},
	OpValidateReservation: {
		entities.UserRoleLibrarian: true,
		entities.UserRoleAdmin:     true,
	},
}

// Allowed reports whether the actor may perform op. Superusers are
// always allowed.
func Allowed(op Operation, actor Actor) bool {
	if actor.Superuser {
		return true
	}
	return policy[op][actor.Role]
}
