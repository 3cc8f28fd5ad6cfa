package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/quilldesk/brokerage-api/internal/models"
)

const assignmentColumns = `id, student_id, writer_id, title, type, subject, level, deadline, completed_at,
    status, priority, document_link, description, word_count, cost_per_word, writer_cost_per_word,
    price, paid_amount, writer_price, writer_paid_amount, sunk_costs, is_dissertation, total_chapters,
    chapters, activity_log, payment_history, status_history, attachments, is_archived, created_at, updated_at`

// AssignmentRepository manages persistence for assignment records.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// assignmentWhere builds the WHERE clause and its args for a filter.
func assignmentWhere(filter models.AssignmentFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.WriterID != nil {
		conditions = append(conditions, fmt.Sprintf("writer_id = $%d", len(args)+1))
		args = append(args, *filter.WriterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("is_archived = $%d", len(args)+1))
		args = append(args, *filter.Archived)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(subject) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	return strings.Join(conditions, " AND "), args
}

// assignmentOrder resolves the sort column and direction against the allowlist.
func assignmentOrder(filter models.AssignmentFilter) (string, string) {
	allowedSorts := map[string]string{
		"deadline":   "deadline",
		"created_at": "created_at",
		"status":     "status",
		"price":      "price",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return column, order
}

// List returns assignments matching the provided filters.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	where, args := assignmentWhere(filter)
	column, order := assignmentOrder(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM assignments WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		assignmentColumns, where, column, order, size, offset)

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM assignments WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// ListAll returns every assignment matching the filter with no pagination.
// Report exports walk the whole ledger through this path so the page-size
// clamp in List never truncates them.
func (r *AssignmentRepository) ListAll(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	where, args := assignmentWhere(filter)
	column, order := assignmentOrder(filter)

	query := fmt.Sprintf("SELECT %s FROM assignments WHERE %s ORDER BY %s %s",
		assignmentColumns, where, column, order)

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list all assignments: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts a new assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	const query = `INSERT INTO assignments (id, student_id, writer_id, title, type, subject, level, deadline, completed_at,
        status, priority, document_link, description, word_count, cost_per_word, writer_cost_per_word,
        price, paid_amount, writer_price, writer_paid_amount, sunk_costs, is_dissertation, total_chapters,
        chapters, activity_log, payment_history, status_history, attachments, is_archived, created_at, updated_at)
        VALUES (:id, :student_id, :writer_id, :title, :type, :subject, :level, :deadline, :completed_at,
        :status, :priority, :document_link, :description, :word_count, :cost_per_word, :writer_cost_per_word,
        :price, :paid_amount, :writer_price, :writer_paid_amount, :sunk_costs, :is_dissertation, :total_chapters,
        :chapters, :activity_log, :payment_history, :status_history, :attachments, :is_archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies descriptive and rate fields. Financial balances, histories
// and archive state only move through the dedicated ledger statements below.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) (int64, error) {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET title = :title, type = :type, subject = :subject, level = :level,
        deadline = :deadline, priority = :priority, document_link = :document_link, description = :description,
        word_count = :word_count, cost_per_word = :cost_per_word, writer_cost_per_word = :writer_cost_per_word,
        price = :price, writer_price = :writer_price, is_dissertation = :is_dissertation,
        total_chapters = :total_chapters, chapters = :chapters, attachments = :attachments,
        updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return 0, fmt.Errorf("update assignment: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes an assignment permanently.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete assignment: %w", err)
	}
	return res.RowsAffected()
}

// SetArchived toggles the soft-delete flag without touching any other field.
func (r *AssignmentRepository) SetArchived(ctx context.Context, id string, archived bool) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assignments SET is_archived = $2, updated_at = $3 WHERE id = $1`,
		id, archived, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("set assignment archived: %w", err)
	}
	return res.RowsAffected()
}

// AppendPayment atomically increments one side's paid amount and appends the
// payment entry, so a failed statement leaves neither applied.
func (r *AssignmentRepository) AppendPayment(ctx context.Context, id, side string, amount float64, entry types.JSONText) (int64, error) {
	column := "paid_amount"
	if side == models.PaymentSideWriter {
		column = "writer_paid_amount"
	}
	query := fmt.Sprintf(`UPDATE assignments SET %s = %s + $2,
        payment_history = COALESCE(payment_history, '[]'::jsonb) || $3::jsonb,
        updated_at = $4 WHERE id = $1`, column, column)
	res, err := r.db.ExecContext(ctx, query, id, amount, []byte(entry), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("append payment: %w", err)
	}
	return res.RowsAffected()
}

// UpdateStatus sets the status and appends the transition in one statement.
// completedAt is only passed on completion; COALESCE keeps the first value so
// re-completing never moves the timestamp. The self-join exposes the row's
// prior completed_at, so the returned flag is true for exactly one caller
// even when completions race.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id, status string, entry types.JSONText, completedAt *time.Time) (int64, bool, error) {
	const query = `UPDATE assignments SET status = $2,
        status_history = COALESCE(assignments.status_history, '[]'::jsonb) || $3::jsonb,
        completed_at = COALESCE(assignments.completed_at, $4),
        updated_at = $5
        FROM assignments prev
        WHERE assignments.id = $1 AND prev.id = assignments.id
        RETURNING (prev.completed_at IS NULL AND assignments.completed_at IS NOT NULL) AS completed_now`
	var completedNow bool
	err := r.db.QueryRowxContext(ctx, query, id, status, []byte(entry), completedAt, time.Now().UTC()).Scan(&completedNow)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("update assignment status: %w", err)
	}
	return 1, completedNow, nil
}

// ReassignWriter moves the current writer's paid amount into sunk costs,
// resets writer-side financials, swaps the writer and appends the history
// entry, all in one statement conditioned on the last-known writer so a
// concurrent reassignment affects zero rows instead of double-crediting.
func (r *AssignmentRepository) ReassignWriter(ctx context.Context, id string, expectedWriterID *int64, newWriterID int64, entry types.JSONText) (int64, error) {
	const query = `UPDATE assignments SET
        sunk_costs = sunk_costs + CASE WHEN writer_paid_amount > 0 THEN writer_paid_amount ELSE 0 END,
        writer_cost_per_word = 0, writer_price = 0, writer_paid_amount = 0,
        writer_id = $2,
        status_history = COALESCE(status_history, '[]'::jsonb) || $3::jsonb,
        updated_at = $4
        WHERE id = $1 AND writer_id IS NOT DISTINCT FROM $5`
	res, err := r.db.ExecContext(ctx, query, id, newWriterID, []byte(entry), time.Now().UTC(), expectedWriterID)
	if err != nil {
		return 0, fmt.Errorf("reassign writer: %w", err)
	}
	return res.RowsAffected()
}

// AppendActivity appends a free-form audit note.
func (r *AssignmentRepository) AppendActivity(ctx context.Context, id string, entry types.JSONText) (int64, error) {
	const query = `UPDATE assignments SET
        activity_log = COALESCE(activity_log, '[]'::jsonb) || $2::jsonb,
        updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, []byte(entry), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("append activity: %w", err)
	}
	return res.RowsAffected()
}

// Totals aggregates the money flow across non-archived assignments.
func (r *AssignmentRepository) Totals(ctx context.Context) (*models.LedgerTotals, error) {
	const query = `SELECT COUNT(*) AS assignments,
        COUNT(*) FILTER (WHERE completed_at IS NOT NULL) AS completed,
        COALESCE(SUM(price - paid_amount), 0) AS receivable,
        COALESCE(SUM(writer_price - writer_paid_amount), 0) AS writer_payable,
        COALESCE(SUM(sunk_costs), 0) AS sunk_costs,
        COALESCE(SUM(paid_amount), 0) AS collected,
        COALESCE(SUM(writer_paid_amount), 0) AS disbursed
        FROM assignments WHERE is_archived = FALSE`
	var totals models.LedgerTotals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("aggregate ledger totals: %w", err)
	}
	return &totals, nil
}

// Upsert inserts or updates an assignment during bulk import.
func (r *AssignmentRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	const query = `INSERT INTO assignments (id, student_id, writer_id, title, type, subject, level, deadline, completed_at,
        status, priority, document_link, description, word_count, cost_per_word, writer_cost_per_word,
        price, paid_amount, writer_price, writer_paid_amount, sunk_costs, is_dissertation, total_chapters,
        chapters, activity_log, payment_history, status_history, attachments, is_archived, created_at, updated_at)
        VALUES (:id, :student_id, :writer_id, :title, :type, :subject, :level, :deadline, :completed_at,
        :status, :priority, :document_link, :description, :word_count, :cost_per_word, :writer_cost_per_word,
        :price, :paid_amount, :writer_price, :writer_paid_amount, :sunk_costs, :is_dissertation, :total_chapters,
        :chapters, :activity_log, :payment_history, :status_history, :attachments, :is_archived, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET student_id = EXCLUDED.student_id, writer_id = EXCLUDED.writer_id,
        title = EXCLUDED.title, type = EXCLUDED.type, subject = EXCLUDED.subject, level = EXCLUDED.level,
        deadline = EXCLUDED.deadline, completed_at = EXCLUDED.completed_at, status = EXCLUDED.status,
        priority = EXCLUDED.priority, document_link = EXCLUDED.document_link, description = EXCLUDED.description,
        word_count = EXCLUDED.word_count, cost_per_word = EXCLUDED.cost_per_word,
        writer_cost_per_word = EXCLUDED.writer_cost_per_word, price = EXCLUDED.price,
        paid_amount = EXCLUDED.paid_amount, writer_price = EXCLUDED.writer_price,
        writer_paid_amount = EXCLUDED.writer_paid_amount, sunk_costs = EXCLUDED.sunk_costs,
        is_dissertation = EXCLUDED.is_dissertation, total_chapters = EXCLUDED.total_chapters,
        chapters = EXCLUDED.chapters, activity_log = EXCLUDED.activity_log,
        payment_history = EXCLUDED.payment_history, status_history = EXCLUDED.status_history,
        attachments = EXCLUDED.attachments, is_archived = EXCLUDED.is_archived, updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, assignment); err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// Truncate removes every assignment. Used by the bulk data reset.
func (r *AssignmentRepository) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM assignments`); err != nil {
		return fmt.Errorf("truncate assignments: %w", err)
	}
	return nil
}
