package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/internal/repository"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone"`
	University string  `json:"university"`
	Remarks    string  `json:"remarks"`
	ReferredBy *string `json:"referredBy"`
}

// UpdateStudentRequest is the payload for editing a student profile.
type UpdateStudentRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone"`
	University string  `json:"university"`
	Remarks    string  `json:"remarks"`
	IsFlagged  bool    `json:"isFlagged"`
	ReferredBy *string `json:"referredBy"`
}

// StudentService manages student profiles. ReferredBy is stored as given and
// is never validated against existing students, so stale references survive
// deletions.
type StudentService struct {
	students  studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	return s.load(ctx, id)
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		University: req.University,
		Remarks:    req.Remarks,
		ReferredBy: req.ReferredBy,
	}
	if err := s.students.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update edits a student profile.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Name = req.Name
	student.Email = req.Email
	student.Phone = req.Phone
	student.University = req.University
	student.Remarks = req.Remarks
	student.IsFlagged = req.IsFlagged
	student.ReferredBy = req.ReferredBy
	rows, err := s.students.Update(ctx, student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// Delete removes a student. Assignments keep their student id and other
// students keep any referredBy pointing here.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	rows, err := s.students.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

func (s *StudentService) load(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
