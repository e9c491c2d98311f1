package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

// ReservationsController handles reservations: students placing them,
// staff listing the waiting queue and converting pickups into loans.
type ReservationsController struct {
	engine   *lending.Engine
	sessions *auth.SessionManager
}

// NewReservationsController creates a new ReservationsController.
func NewReservationsController(engine *lending.Engine, sm *auth.SessionManager) *ReservationsController {
	return &ReservationsController{
		engine:   engine,
		sessions: sm,
	}
}

// Reserve places a reservation on a book for the logged-in user,
// holding one copy of the stock.
func (rc *ReservationsController) Reserve(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	bookID, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Livro não encontrado")
		return
	}

	_, err = rc.engine.ReserveBook(user.ID, bookID, actorFrom(user))
	if err != nil {
		rc.sessions.Flash(c.Request, reservationErrorMessage(err))
		c.Redirect(http.StatusFound, "/")
		return
	}

	rc.sessions.Flash(c.Request, "Reserva realizada. Retire o livro em até 24 horas.")
	c.Redirect(http.StatusFound, "/")
}

// Index sweeps expired reservations and then renders the waiting
// queue, so the screen never shows stale holds.
func (rc *ReservationsController) Index(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	expired, err := rc.engine.SweepExpiredReservations(actorFrom(user))
	if err != nil {
		respondInternalError(c, err, "sweep reservations")
		return
	}

	waiting, err := rc.engine.ListWaitingReservations()
	if err != nil {
		respondInternalError(c, err, "list reservations")
		return
	}

	render(c, rc.sessions, http.StatusOK, "reservation_list", gin.H{
		"Reservations": waiting,
		"Expired":      expired,
	})
}

// Validate converts a waiting reservation into a loan at pickup time.
// The stock was already decremented when the reservation was placed.
func (rc *ReservationsController) Validate(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Reserva não encontrada")
		return
	}

	_, err = rc.engine.ValidateReservation(id, actorFrom(user))
	if err != nil {
		if errors.Is(err, lending.ErrNotFound) {
			c.String(http.StatusNotFound, "Reserva não encontrada")
			return
		}
		rc.sessions.Flash(c.Request, reservationErrorMessage(err))
		c.Redirect(http.StatusFound, "/reservas")
		return
	}

	rc.sessions.Flash(c.Request, "Reserva validada: empréstimo registrado.")
	c.Redirect(http.StatusFound, "/reservas")
}

func reservationErrorMessage(err error) string {
	switch {
	case errors.Is(err, lending.ErrOutOfStock):
		return "Não há exemplares disponíveis para reserva."
	case errors.Is(err, lending.ErrConflict):
		return "Você já possui uma reserva ativa para este livro."
	case errors.Is(err, lending.ErrInvalidState):
		return "Esta reserva não está mais aguardando retirada."
	case errors.Is(err, lending.ErrForbidden):
		return "Você não tem permissão para esta operação."
	case errors.Is(err, lending.ErrNotFound):
		return "Registro não encontrado."
	default:
		return "Não foi possível concluir a operação."
	}
}
