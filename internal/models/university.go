package models

import "time"

// University is a canonical institution entity. Names are unique
// case-insensitively; the first-seen casing is what gets stored.
type University struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  *string   `db:"location" json:"location,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
