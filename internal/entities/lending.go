package entities

import "time"

// LoanStatus is derived from LoanDate/DueDate/ReturnDate at read time.
// It is never stored.
type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanReturned LoanStatus = "RETURNED"
)

// Loan records a book lent to a user. LoanDate and DueDate are set once
// at creation; ReturnDate is set exactly once by the return operation and
// never modified afterwards.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookID     uint       `gorm:"index" json:"book_id"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Status derives the loan state relative to today.
func (l Loan) Status(today time.Time) LoanStatus {
	if l.ReturnDate != nil {
		return LoanReturned
	}
	if l.DueDate.Before(truncateToDay(today)) {
		return LoanOverdue
	}
	return LoanActive
}

// ReservationStatus is the stored reservation state. COMPLETED and
// CANCELLED are terminal; nothing ever re-enters WAITING.
type ReservationStatus string

const (
	ReservationWaiting   ReservationStatus = "WAITING"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a temporary stock hold: the book's quantity is
// decremented when the reservation is created and restored when it
// expires. Validating a reservation converts the hold into a loan
// without touching stock again. Rows are never deleted, only
// status-transitioned.
type Reservation struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"index" json:"user_id"`
	User      User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookID    uint              `gorm:"index" json:"book_id"`
	Book      Book              `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Status    ReservationStatus `gorm:"size:20;index;default:'WAITING'" json:"status"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Expired reports whether a WAITING reservation's hold has lapsed.
func (r Reservation) Expired(now time.Time) bool {
	return r.Status == ReservationWaiting && r.ExpiresAt.Before(now)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
