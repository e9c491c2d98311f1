package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

func TestAllowed(t *testing.T) {
	student := Actor{Role: entities.UserRoleStudent}
	librarian := Actor{Role: entities.UserRoleLibrarian}
	admin := Actor{Role: entities.UserRoleAdmin}

	t.Run("students are denied staff operations", func(t *testing.T) {
		for _, op := range []Operation{OpCreateLoan, OpReturnLoan, OpSweepReservations, OpValidateReservation} {
			assert.False(t, Allowed(op, student), "op %s", op)
			assert.True(t, Allowed(op, librarian), "op %s", op)
			assert.True(t, Allowed(op, admin), "op %s", op)
		}
	})

	t.Run("reserving and listing are open to every role", func(t *testing.T) {
		for _, actor := range []Actor{student, librarian, admin} {
			assert.True(t, Allowed(OpReserveBook, actor))
			assert.True(t, Allowed(OpListLoans, actor))
		}
	})

	t.Run("superusers bypass the table", func(t *testing.T) {
		super := Actor{Role: entities.UserRoleStudent, Superuser: true}
		assert.True(t, Allowed(OpCreateLoan, super))
		assert.True(t, Allowed(OpSweepReservations, super))
	})

	t.Run("unknown roles are denied", func(t *testing.T) {
		assert.False(t, Allowed(OpCreateLoan, Actor{Role: "VISITOR"}))
	})
}
