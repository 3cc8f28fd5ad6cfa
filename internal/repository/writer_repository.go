package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quilldesk/brokerage-api/internal/models"
)

const writerColumns = `id, phone, name, email, specialty, is_flagged, rating, availability_status,
    max_concurrent_tasks, total_assignments, completed_assignments, on_time_deliveries,
    level, points, streak, last_active, created_at, updated_at`

// WriterRepository manages persistence for writer records.
type WriterRepository struct {
	db *sqlx.DB
}

// NewWriterRepository constructs a WriterRepository.
func NewWriterRepository(db *sqlx.DB) *WriterRepository {
	return &WriterRepository{db: db}
}

func (r *WriterRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns writers matching the provided filters.
func (r *WriterRepository) List(ctx context.Context, filter models.WriterFilter) ([]models.Writer, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR phone LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Availability != "" {
		conditions = append(conditions, fmt.Sprintf("availability_status = $%d", len(args)+1))
		args = append(args, filter.Availability)
	}
	if filter.Flagged != nil {
		conditions = append(conditions, fmt.Sprintf("is_flagged = $%d", len(args)+1))
		args = append(args, *filter.Flagged)
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":        "name",
		"level":       "level",
		"points":      "points",
		"last_active": "last_active",
		"created_at":  "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM writers WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		writerColumns, where, column, order, size, offset)

	var writers []models.Writer
	if err := r.db.SelectContext(ctx, &writers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list writers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM writers WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count writers: %w", err)
	}
	return writers, total, nil
}

// FindByID fetches a writer by ID.
func (r *WriterRepository) FindByID(ctx context.Context, id int64) (*models.Writer, error) {
	query := fmt.Sprintf("SELECT %s FROM writers WHERE id = $1", writerColumns)
	var writer models.Writer
	if err := r.db.GetContext(ctx, &writer, query, id); err != nil {
		return nil, err
	}
	return &writer, nil
}

// HighestPlaceholderPhone returns the largest allocated placeholder, or ""
// when none exist. Placeholders are fixed-width and zero-padded, so the
// lexicographic maximum is the numeric maximum.
func (r *WriterRepository) HighestPlaceholderPhone(ctx context.Context) (string, error) {
	const query = `SELECT phone FROM writers WHERE phone LIKE $1 ORDER BY phone DESC LIMIT 1`
	var phone string
	if err := r.db.GetContext(ctx, &phone, query, models.PlaceholderPhonePrefix+"%"); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("find highest placeholder phone: %w", err)
	}
	return phone, nil
}

// Create inserts a new writer record. The phone UNIQUE constraint is the
// backstop for concurrent placeholder allocation; callers retry on conflict.
func (r *WriterRepository) Create(ctx context.Context, writer *models.Writer) error {
	now := time.Now().UTC()
	if writer.CreatedAt.IsZero() {
		writer.CreatedAt = now
	}
	writer.UpdatedAt = now
	if writer.LastActive.IsZero() {
		writer.LastActive = now
	}
	const query = `INSERT INTO writers (phone, name, email, specialty, is_flagged, rating, availability_status,
        max_concurrent_tasks, total_assignments, completed_assignments, on_time_deliveries,
        level, points, streak, last_active, created_at, updated_at)
        VALUES (:phone, :name, :email, :specialty, :is_flagged, :rating, :availability_status,
        :max_concurrent_tasks, :total_assignments, :completed_assignments, :on_time_deliveries,
        :level, :points, :streak, :last_active, :created_at, :updated_at)
        RETURNING id`
	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, writer)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&writer.ID); err != nil {
			return fmt.Errorf("scan writer id: %w", err)
		}
	}
	return rows.Err()
}

// Update modifies an existing writer.
func (r *WriterRepository) Update(ctx context.Context, writer *models.Writer) (int64, error) {
	writer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE writers SET phone = :phone, name = :name, email = :email, specialty = :specialty,
        is_flagged = :is_flagged, rating = :rating, availability_status = :availability_status,
        max_concurrent_tasks = :max_concurrent_tasks, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, writer)
	if err != nil {
		return 0, fmt.Errorf("update writer: %w", err)
	}
	return res.RowsAffected()
}

// UpdatePerformance applies the completion-policy output to a writer.
func (r *WriterRepository) UpdatePerformance(ctx context.Context, id int64, perf models.WriterPerformance) error {
	const query = `UPDATE writers SET total_assignments = $2, completed_assignments = $3,
        on_time_deliveries = $4, level = $5, points = $6, streak = $7, rating = $8,
        last_active = $9, updated_at = $10 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, perf.TotalAssignments, perf.CompletedAssignments,
		perf.OnTimeDeliveries, perf.Level, perf.Points, perf.Streak, perf.Rating,
		perf.LastActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("update writer performance: %w", err)
	}
	return nil
}

// Delete removes a writer. Assignments referencing it fall back to NULL.
func (r *WriterRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM writers WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete writer: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the total number of writers.
func (r *WriterRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM writers`); err != nil {
		return 0, fmt.Errorf("count writers: %w", err)
	}
	return total, nil
}

// Upsert inserts or updates a writer keyed by phone during bulk import.
func (r *WriterRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, writer *models.Writer) error {
	now := time.Now().UTC()
	if writer.CreatedAt.IsZero() {
		writer.CreatedAt = now
	}
	writer.UpdatedAt = now
	if writer.LastActive.IsZero() {
		writer.LastActive = now
	}
	const query = `INSERT INTO writers (phone, name, email, specialty, is_flagged, rating, availability_status,
        max_concurrent_tasks, total_assignments, completed_assignments, on_time_deliveries,
        level, points, streak, last_active, created_at, updated_at)
        VALUES (:phone, :name, :email, :specialty, :is_flagged, :rating, :availability_status,
        :max_concurrent_tasks, :total_assignments, :completed_assignments, :on_time_deliveries,
        :level, :points, :streak, :last_active, :created_at, :updated_at)
        ON CONFLICT (phone) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
        specialty = EXCLUDED.specialty, is_flagged = EXCLUDED.is_flagged, rating = EXCLUDED.rating,
        availability_status = EXCLUDED.availability_status, max_concurrent_tasks = EXCLUDED.max_concurrent_tasks,
        total_assignments = EXCLUDED.total_assignments, completed_assignments = EXCLUDED.completed_assignments,
        on_time_deliveries = EXCLUDED.on_time_deliveries, level = EXCLUDED.level, points = EXCLUDED.points,
        streak = EXCLUDED.streak, last_active = EXCLUDED.last_active, updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, writer); err != nil {
		return fmt.Errorf("upsert writer: %w", err)
	}
	return nil
}

// Truncate removes every writer. Used by the bulk data reset.
func (r *WriterRepository) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM writers`); err != nil {
		return fmt.Errorf("truncate writers: %w", err)
	}
	return nil
}
