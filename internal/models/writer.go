package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WriterLevel is an ordered performance tier.
type WriterLevel string

const (
	WriterLevelBronze   WriterLevel = "Bronze"
	WriterLevelSilver   WriterLevel = "Silver"
	WriterLevelGold     WriterLevel = "Gold"
	WriterLevelPlatinum WriterLevel = "Platinum"
)

// PlaceholderPhonePrefix reserves a block of 10-digit values that can never
// be genuine phone numbers. Placeholder values are zero-padded so descending
// lexicographic order matches descending numeric order.
const PlaceholderPhonePrefix = "00000"

// WriterRating aggregates review dimensions, each in [0,5], plus the sample count.
type WriterRating struct {
	Quality       float64 `json:"quality"`
	Punctuality   float64 `json:"punctuality"`
	Communication float64 `json:"communication"`
	Reliability   float64 `json:"reliability"`
	Count         int     `json:"count"`
}

// DefaultWriterRating seeds new writers with a neutral perfect score.
func DefaultWriterRating() WriterRating {
	return WriterRating{Quality: 5, Punctuality: 5, Communication: 5, Reliability: 5, Count: 1}
}

// Value implements driver.Valuer so the rating persists as a JSON column.
func (r WriterRating) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSON rating columns.
func (r *WriterRating) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = WriterRating{}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported rating source type %T", src)
	}
}

// Writer is a work fulfiller. Phone is unique: either a genuine 10-digit
// number or an allocated placeholder in the reserved 00000 block.
type Writer struct {
	ID        int64   `db:"id" json:"id"`
	Phone     string  `db:"phone" json:"phone"`
	Name      string  `db:"name" json:"name"`
	Email     *string `db:"email" json:"email,omitempty"`
	Specialty *string `db:"specialty" json:"specialty,omitempty"`
	IsFlagged bool    `db:"is_flagged" json:"isFlagged"`

	Rating             WriterRating `db:"rating" json:"rating"`
	AvailabilityStatus string       `db:"availability_status" json:"availabilityStatus"`
	MaxConcurrentTasks int          `db:"max_concurrent_tasks" json:"maxConcurrentTasks"`

	TotalAssignments     int         `db:"total_assignments" json:"totalAssignments"`
	CompletedAssignments int         `db:"completed_assignments" json:"completedAssignments"`
	OnTimeDeliveries     int         `db:"on_time_deliveries" json:"onTimeDeliveries"`
	Level                WriterLevel `db:"level" json:"level"`
	Points               int         `db:"points" json:"points"`
	Streak               int         `db:"streak" json:"streak"`
	LastActive           time.Time   `db:"last_active" json:"lastActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// WriterPerformance is the slice of Writer mutated by completion events.
type WriterPerformance struct {
	TotalAssignments     int          `json:"totalAssignments"`
	CompletedAssignments int          `json:"completedAssignments"`
	OnTimeDeliveries     int          `json:"onTimeDeliveries"`
	Level                WriterLevel  `json:"level"`
	Points               int          `json:"points"`
	Streak               int          `json:"streak"`
	Rating               WriterRating `json:"rating"`
	LastActive           time.Time    `json:"lastActive"`
}

// WriterFilter encapsulates allowed search parameters for listing writers.
type WriterFilter struct {
	Search       string
	Availability string
	Flagged      *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
