package entities

import "time"

// Category groups books by subject. Names are unique.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Author is created lazily on book registration via exact-name lookup.
// Names are deliberately NOT unique at the storage level: the lookup is
// case-sensitive and first match wins, so case or whitespace variants
// accumulate as distinct rows.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is a catalog title. Quantity is the available-stock counter:
// loans and reservations decrement it, returns and expiry sweeps
// increment it. It must never go negative.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:200" json:"title"`
	ISBN            string    `gorm:"uniqueIndex;size:13" json:"isbn"`
	CategoryID      uint      `gorm:"index" json:"category_id"`
	Category        Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID        uint      `gorm:"index" json:"author_id"`
	Author          Author    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PublicationYear int       `json:"publication_year"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
