package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/quilldesk/brokerage-api/internal/models"
)

const studentColumns = `id, name, email, phone, university, university_id, remarks, is_flagged, referred_by, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.UniversityID != nil {
		conditions = append(conditions, fmt.Sprintf("university_id = $%d", len(args)+1))
		args = append(args, *filter.UniversityID)
	}
	if filter.Flagged != nil {
		conditions = append(conditions, fmt.Sprintf("is_flagged = $%d", len(args)+1))
		args = append(args, *filter.Flagged)
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":       "name",
		"created_at": "created_at",
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

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, where, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListUnlinked returns students carrying a free-text university name but no
// structured reference yet.
func (r *StudentRepository) ListUnlinked(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE TRIM(university) <> '' AND university_id IS NULL ORDER BY created_at", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list unlinked students: %w", err)
	}
	return students, nil
}

// SetUniversity links a student to a canonical university entity.
func (r *StudentRepository) SetUniversity(ctx context.Context, studentID string, universityID int64) error {
	const query = `UPDATE students SET university_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, universityID, time.Now().UTC()); err != nil {
		return fmt.Errorf("set student university: %w", err)
	}
	return nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, email, phone, university, university_id, remarks, is_flagged, referred_by, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :university, :university_id, :remarks, :is_flagged, :referred_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) (int64, error) {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, phone = :phone, university = :university,
        university_id = :university_id, remarks = :remarks, is_flagged = :is_flagged, referred_by = :referred_by,
        updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return 0, fmt.Errorf("update student: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a student and cascades to their assignments.
func (r *StudentRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete student: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Upsert inserts or updates a student during bulk import.
func (r *StudentRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, email, phone, university, university_id, remarks, is_flagged, referred_by, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :university, :university_id, :remarks, :is_flagged, :referred_by, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
        university = EXCLUDED.university, university_id = EXCLUDED.university_id, remarks = EXCLUDED.remarks,
        is_flagged = EXCLUDED.is_flagged, referred_by = EXCLUDED.referred_by, updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// Truncate removes every student. Used by the bulk data reset.
func (r *StudentRepository) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("truncate students: %w", err)
	}
	return nil
}
