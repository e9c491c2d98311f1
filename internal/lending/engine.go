// Package lending owns the loan and reservation lifecycle: stock
// accounting, due-date and expiry computation, and role-gated
// authorization of lending operations.
//
// Every mutating operation runs inside a single database transaction so
// the (stock-counter mutation, loan/reservation row write) pair is
// atomic. Stock decrements use a guarded conditional UPDATE
// (quantity > 0), so concurrent requests for the last copy serialize on
// the book row and can never drive quantity negative.
package lending

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// Default lifecycle parameters, overridable through Config.
const (
	DefaultLoanPeriodDays  = 14
	DefaultReservationHold = 24 * time.Hour
)

// Config tunes the lending lifecycle.
type Config struct {
	LoanPeriodDays  int
	ReservationHold time.Duration
}

// Engine implements the lending operations over a GORM database.
type Engine struct {
	db  *gorm.DB
	cfg Config
	now func() time.Time
}

// NewEngine creates a lending engine. Zero config fields fall back to
// the defaults (14-day loans, 24-hour reservation holds).
func NewEngine(db *gorm.DB, cfg Config) *Engine {
	if cfg.LoanPeriodDays <= 0 {
		cfg.LoanPeriodDays = DefaultLoanPeriodDays
	}
	if cfg.ReservationHold <= 0 {
		cfg.ReservationHold = DefaultReservationHold
	}
	return &Engine{db: db, cfg: cfg, now: time.Now}
}

// today returns the current date at midnight UTC; loan dates are
// day-granular and stored location-free so values survive the SQLite
// round trip unchanged.
func (e *Engine) today() time.Time {
	t := e.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// decrementStock takes one copy of the book inside tx. The WHERE guard
// makes the read-then-decrement atomic: the update only matches while
// quantity > 0, so two transactions cannot both take the last copy.
func decrementStock(tx *gorm.DB, bookID uint) error {
	res := tx.Model(&entities.Book{}).
		Where("id = ? AND quantity > 0", bookID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrOutOfStock
	}
	return nil
}

// incrementStock returns one copy of the book to the shelf inside tx.
func incrementStock(tx *gorm.DB, bookID uint) error {
	res := tx.Model(&entities.Book{}).
		Where("id = ?", bookID).
		UpdateColumn("quantity", gorm.Expr("quantity + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock: %w", res.Error)
	}
	return nil
}

// CreateLoan lends a copy of the book to the user: decrements stock and
// inserts the loan atomically. Due date is today + the loan period.
func (e *Engine) CreateLoan(userID, bookID uint, actor Actor) (*entities.Loan, error) {
	if !Allowed(OpCreateLoan, actor) {
		return nil, ErrForbidden
	}

	today := e.today()
	loan := &entities.Loan{
		UserID:   userID,
		BookID:   bookID,
		LoanDate: today,
		DueDate:  today.AddDate(0, 0, e.cfg.LoanPeriodDays),
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if err := decrementStock(tx, bookID); err != nil {
			return err
		}
		return tx.Create(loan).Error
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan marks the loan returned and puts the copy back in stock.
// Returning an already-returned loan is a no-op and reports the loan
// unchanged.
func (e *Engine) ReturnLoan(loanID uint, actor Actor) (*entities.Loan, error) {
	if !Allowed(OpReturnLoan, actor) {
		return nil, ErrForbidden
	}

	var loan entities.Loan
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, loanID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if loan.ReturnDate != nil {
			// Idempotent: the copy was already restocked on the
			// first return.
			return nil
		}
		today := e.today()
		if err := tx.Model(&loan).UpdateColumn("return_date", today).Error; err != nil {
			return fmt.Errorf("failed to set return date: %w", err)
		}
		loan.ReturnDate = &today
		return incrementStock(tx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// LoanCounts are the dashboard numbers on the loan list screen,
// computed over the FILTERED result set, not the whole table.
type LoanCounts struct {
	Total    int
	Active   int
	Overdue  int
	Returned int
}

// ListLoans returns loans newest-first along with their status counts.
// Students only ever see their own loans; other roles see everything.
// query, when present, is a case-insensitive substring OR-match over
// borrower name, book title and matricula.
func (e *Engine) ListLoans(actor Actor, query string) ([]entities.Loan, LoanCounts, error) {
	var counts LoanCounts
	if !Allowed(OpListLoans, actor) {
		return nil, counts, ErrForbidden
	}

	q := e.db.Preload("Book").Preload("Book.Author").Preload("User").
		Joins("JOIN users ON users.id = loans.user_id").
		Joins("JOIN books ON books.id = loans.book_id").
		Order("loans.id DESC")

	if actor.Role == entities.UserRoleStudent && !actor.Superuser {
		q = q.Where("loans.user_id = ?", actor.UserID)
	}

	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where(
			"users.first_name LIKE ? COLLATE NOCASE OR users.last_name LIKE ? COLLATE NOCASE OR books.title LIKE ? COLLATE NOCASE OR users.matricula LIKE ? COLLATE NOCASE",
			pattern, pattern, pattern, pattern)
	}

	var loans []entities.Loan
	if err := q.Find(&loans).Error; err != nil {
		return nil, counts, err
	}

	today := e.today()
	for _, loan := range loans {
		counts.Total++
		switch loan.Status(today) {
		case entities.LoanReturned:
			counts.Returned++
		case entities.LoanOverdue:
			counts.Overdue++
		default:
			counts.Active++
		}
	}
	return loans, counts, nil
}

// ReserveBook places a stock hold for the user: decrements stock and
// inserts a WAITING reservation atomically. The hold expires after the
// configured duration. Open to any authenticated role.
func (e *Engine) ReserveBook(userID, bookID uint, actor Actor) (*entities.Reservation, error) {
	if !Allowed(OpReserveBook, actor) {
		return nil, ErrForbidden
	}

	reservation := &entities.Reservation{
		UserID:    userID,
		BookID:    bookID,
		Status:    entities.ReservationWaiting,
		ExpiresAt: e.now().Add(e.cfg.ReservationHold),
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var waiting int64
		err := tx.Model(&entities.Reservation{}).
			Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, entities.ReservationWaiting).
			Count(&waiting).Error
		if err != nil {
			return err
		}
		if waiting > 0 {
			return ErrConflict
		}
		if err := decrementStock(tx, bookID); err != nil {
			return err
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// SweepExpiredReservations cancels every WAITING reservation whose hold
// has lapsed, restocking each book, and returns the number cancelled.
// The sweep is idempotent: cancelled reservations never match again.
// It must run before listing WAITING reservations so the list never
// shows stale entries.
func (e *Engine) SweepExpiredReservations(actor Actor) (int, error) {
	if !Allowed(OpSweepReservations, actor) {
		return 0, ErrForbidden
	}

	swept := 0
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var expired []entities.Reservation
		err := tx.Where("status = ? AND expires_at < ?", entities.ReservationWaiting, e.now()).
			Find(&expired).Error
		if err != nil {
			return err
		}
		for _, reservation := range expired {
			if err := incrementStock(tx, reservation.BookID); err != nil {
				return err
			}
			err = tx.Model(&entities.Reservation{}).
				Where("id = ? AND status = ?", reservation.ID, entities.ReservationWaiting).
				Update("status", entities.ReservationCancelled).Error
			if err != nil {
				return fmt.Errorf("failed to cancel reservation %d: %w", reservation.ID, err)
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}

// ListWaitingReservations returns WAITING reservations newest-first.
// Callers must sweep first; see SweepExpiredReservations.
func (e *Engine) ListWaitingReservations() ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := e.db.Preload("Book").Preload("Book.Author").Preload("User").
		Where("status = ?", entities.ReservationWaiting).
		Order("id DESC").
		Find(&reservations).Error
	return reservations, err
}

// ValidateReservation converts a WAITING reservation into a loan. Stock
// is NOT decremented again: the reservation already holds the copy, and
// ownership of the hold transfers to the loan.
func (e *Engine) ValidateReservation(reservationID uint, actor Actor) (*entities.Loan, error) {
	if !Allowed(OpValidateReservation, actor) {
		return nil, ErrForbidden
	}

	var loan *entities.Loan
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var reservation entities.Reservation
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if reservation.Status != entities.ReservationWaiting {
			return ErrInvalidState
		}

		today := e.today()
		loan = &entities.Loan{
			UserID:   reservation.UserID,
			BookID:   reservation.BookID,
			LoanDate: today,
			DueDate:  today.AddDate(0, 0, e.cfg.LoanPeriodDays),
		}
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		return tx.Model(&reservation).Update("status", entities.ReservationCompleted).Error
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}
