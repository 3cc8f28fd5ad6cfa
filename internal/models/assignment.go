package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StatusPending is the lifecycle starting point for every assignment.
// Status is otherwise free-form; StatusCompleted is the one value the
// ledger reacts to.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Assignment is a unit of paid work placed by a student and optionally
// assigned to a writer. JSON field names follow the stored document shape.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"studentId"`
	WriterID    *int64     `db:"writer_id" json:"writerId,omitempty"`
	Title       string     `db:"title" json:"title"`
	Type        string     `db:"type" json:"type"`
	Subject     string     `db:"subject" json:"subject"`
	Level       string     `db:"level" json:"level"`
	Deadline    time.Time  `db:"deadline" json:"deadline"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`

	DocumentLink string `db:"document_link" json:"documentLink,omitempty"`
	Description  string `db:"description" json:"description,omitempty"`

	WordCount         int     `db:"word_count" json:"wordCount"`
	CostPerWord       float64 `db:"cost_per_word" json:"costPerWord"`
	WriterCostPerWord float64 `db:"writer_cost_per_word" json:"writerCostPerWord"`
	Price             float64 `db:"price" json:"price"`
	PaidAmount        float64 `db:"paid_amount" json:"paidAmount"`
	WriterPrice       float64 `db:"writer_price" json:"writerPrice"`
	WriterPaidAmount  float64 `db:"writer_paid_amount" json:"writerPaidAmount"`
	SunkCosts         float64 `db:"sunk_costs" json:"sunkCosts"`

	IsDissertation bool           `db:"is_dissertation" json:"isDissertation"`
	TotalChapters  *int           `db:"total_chapters" json:"totalChapters,omitempty"`
	Chapters       types.JSONText `db:"chapters" json:"chapters,omitempty"`

	ActivityLog    types.JSONText `db:"activity_log" json:"activityLog"`
	PaymentHistory types.JSONText `db:"payment_history" json:"paymentHistory"`
	StatusHistory  types.JSONText `db:"status_history" json:"statusHistory"`
	Attachments    types.JSONText `db:"attachments" json:"attachments"`

	IsArchived bool      `db:"is_archived" json:"isArchived"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// AssignmentFilter encapsulates allowed search parameters for listing assignments.
type AssignmentFilter struct {
	StudentID string
	WriterID  *int64
	Status    string
	Archived  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// LedgerTotals aggregates the money flow across non-archived assignments.
type LedgerTotals struct {
	Assignments        int     `db:"assignments" json:"assignments"`
	Completed          int     `db:"completed" json:"completed"`
	Receivable         float64 `db:"receivable" json:"receivable"`
	WriterPayable      float64 `db:"writer_payable" json:"writerPayable"`
	SunkCosts          float64 `db:"sunk_costs" json:"sunkCosts"`
	CollectedPayments  float64 `db:"collected" json:"collectedPayments"`
	WriterDisbursement float64 `db:"disbursed" json:"writerDisbursement"`
}
