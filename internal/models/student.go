package models

import "time"

// Student places paid orders. The free-text University field is legacy
// display data; UniversityID is the source of truth once set. ReferredBy is
// a weak reference to another student id and may dangle.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	University   string    `db:"university" json:"university,omitempty"`
	UniversityID *int64    `db:"university_id" json:"universityId,omitempty"`
	Remarks      string    `db:"remarks" json:"remarks,omitempty"`
	IsFlagged    bool      `db:"is_flagged" json:"isFlagged"`
	ReferredBy   *string   `db:"referred_by" json:"referredBy,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search       string
	UniversityID *int64
	Flagged      *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
