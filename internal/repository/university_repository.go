package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quilldesk/brokerage-api/internal/models"
)

// UniversityRepository manages persistence for canonical university entities.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository constructs a UniversityRepository.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

func (r *UniversityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListAll returns every university ordered by name.
func (r *UniversityRepository) ListAll(ctx context.Context) ([]models.University, error) {
	const query = `SELECT id, name, location, created_at, updated_at FROM universities ORDER BY name`
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query); err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return universities, nil
}

// FindByID fetches a university by ID.
func (r *UniversityRepository) FindByID(ctx context.Context, id int64) (*models.University, error) {
	const query = `SELECT id, name, location, created_at, updated_at FROM universities WHERE id = $1`
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, id); err != nil {
		return nil, err
	}
	return &university, nil
}

// ExistsByName checks case-insensitively for a university name, optionally
// excluding an ID (for updates).
func (r *UniversityRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM universities WHERE LOWER(TRIM(name)) = LOWER(TRIM($1))"
	args := []interface{}{name}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check university name: %w", err)
	}
	return true, nil
}

// Create inserts a new university and fills in the generated ID.
func (r *UniversityRepository) Create(ctx context.Context, university *models.University) error {
	now := time.Now().UTC()
	if university.CreatedAt.IsZero() {
		university.CreatedAt = now
	}
	university.UpdatedAt = now
	const query = `INSERT INTO universities (name, location, created_at, updated_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, university.Name, university.Location,
		university.CreatedAt, university.UpdatedAt).Scan(&university.ID); err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	return nil
}

// Update modifies an existing university.
func (r *UniversityRepository) Update(ctx context.Context, university *models.University) (int64, error) {
	university.UpdatedAt = time.Now().UTC()
	const query = `UPDATE universities SET name = :name, location = :location, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, university)
	if err != nil {
		return 0, fmt.Errorf("update university: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a university. Student references fall back to NULL.
func (r *UniversityRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete university: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the total number of universities.
func (r *UniversityRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM universities`); err != nil {
		return 0, fmt.Errorf("count universities: %w", err)
	}
	return total, nil
}

// Truncate removes every university. Used by the bulk data reset.
func (r *UniversityRepository) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM universities`); err != nil {
		return fmt.Errorf("truncate universities: %w", err)
	}
	return nil
}
