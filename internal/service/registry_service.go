package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/internal/repository"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type universityRepository interface {
	ListAll(ctx context.Context) ([]models.University, error)
	FindByID(ctx context.Context, id int64) (*models.University, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, university *models.University) error
	Update(ctx context.Context, university *models.University) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type registryStudentStore interface {
	ListUnlinked(ctx context.Context) ([]models.Student, error)
	SetUniversity(ctx context.Context, studentID string, universityID int64) error
}

// UniversityRequest is the payload for creating or updating universities.
type UniversityRequest struct {
	Name     string  `json:"name" validate:"required"`
	Location *string `json:"location"`
}

// BackfillResult summarises one canonicalization pass.
type BackfillResult struct {
	StudentsLinked      int `json:"studentsLinked"`
	UniversitiesCreated int `json:"universitiesCreated"`
}

// RegistryService canonicalizes free-text university names into stable
// entities and backfills structured references on students.
type RegistryService struct {
	universities universityRepository
	students     registryStudentStore
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewRegistryService constructs the registry service.
func NewRegistryService(universities universityRepository, students registryStudentStore, validate *validator.Validate, logger *zap.Logger) *RegistryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{universities: universities, students: students, validator: validate, logger: logger}
}

// List returns every canonical university.
func (s *RegistryService) List(ctx context.Context) ([]models.University, error) {
	universities, err := s.universities.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
	}
	return universities, nil
}

// Create adds a university, rejecting case-insensitive duplicate names.
func (s *RegistryService) Create(ctx context.Context, req UniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "university name cannot be blank")
	}
	exists, err := s.universities.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check university name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "university name already exists")
	}
	university := &models.University{Name: name, Location: req.Location}
	if err := s.universities.Create(ctx, university); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "university name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university")
	}
	return university, nil
}

// Update renames or relocates a university, keeping names unique
// case-insensitively.
func (s *RegistryService) Update(ctx context.Context, id int64, req UniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload")
	}
	university, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "university name cannot be blank")
	}
	exists, err := s.universities.ExistsByName(ctx, name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check university name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "university name already exists")
	}
	university.Name = name
	university.Location = req.Location
	rows, err := s.universities.Update(ctx, university)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "university name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update university")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
	}
	return university, nil
}

// Delete removes a university.
func (s *RegistryService) Delete(ctx context.Context, id int64) error {
	rows, err := s.universities.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete university")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "university not found")
	}
	return nil
}

// Backfill canonicalizes every student still carrying only a free-text
// university name. Lookups are case-insensitive on the trimmed name; the
// first-seen casing is what gets stored. The pass is idempotent and safe to
// interrupt: already-linked students are never revisited.
func (s *RegistryService) Backfill(ctx context.Context) (*BackfillResult, error) {
	existing, err := s.universities.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
	}
	index := make(map[string]int64, len(existing))
	for _, u := range existing {
		index[strings.ToLower(strings.TrimSpace(u.Name))] = u.ID
	}

	unlinked, err := s.students.ListUnlinked(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unlinked students")
	}

	result := &BackfillResult{}
	for _, student := range unlinked {
		name := strings.TrimSpace(student.University)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)

		id, ok := index[key]
		if !ok {
			university := &models.University{Name: name}
			if err := s.universities.Create(ctx, university); err != nil {
				return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university during backfill")
			}
			index[key] = university.ID
			id = university.ID
			result.UniversitiesCreated++
			s.logger.Info("created university from backfill", zap.String("name", name))
		}

		if err := s.students.SetUniversity(ctx, student.ID, id); err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link student during backfill")
		}
		result.StudentsLinked++
	}
	return result, nil
}

func (s *RegistryService) load(ctx context.Context, id int64) (*models.University, error) {
	university, err := s.universities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	return university, nil
}
