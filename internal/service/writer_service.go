package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/internal/repository"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type writerRepository interface {
	List(ctx context.Context, filter models.WriterFilter) ([]models.Writer, int, error)
	FindByID(ctx context.Context, id int64) (*models.Writer, error)
	HighestPlaceholderPhone(ctx context.Context) (string, error)
	Create(ctx context.Context, writer *models.Writer) error
	Update(ctx context.Context, writer *models.Writer) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type achievementLister interface {
	ListByWriter(ctx context.Context, writerID int64) ([]models.WriterAchievement, error)
}

// genuinePhonePattern matches a real 10-digit phone number. Anything else
// gets a placeholder from the reserved 00000 block.
var genuinePhonePattern = regexp.MustCompile(`^\d{10}$`)

// CreateWriterRequest holds the payload for registering writers.
type CreateWriterRequest struct {
	Name               string  `json:"name" validate:"required"`
	Phone              string  `json:"phone"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Specialty          *string `json:"specialty"`
	AvailabilityStatus string  `json:"availabilityStatus"`
	MaxConcurrentTasks int     `json:"maxConcurrentTasks" validate:"min=0"`
}

// UpdateWriterRequest holds the payload for updating writers.
type UpdateWriterRequest struct {
	Name               string               `json:"name" validate:"required"`
	Phone              string               `json:"phone"`
	Email              *string              `json:"email" validate:"omitempty,email"`
	Specialty          *string              `json:"specialty"`
	IsFlagged          bool                 `json:"isFlagged"`
	Rating             *models.WriterRating `json:"rating"`
	AvailabilityStatus string               `json:"availabilityStatus"`
	MaxConcurrentTasks int                  `json:"maxConcurrentTasks" validate:"min=0"`
}

// WriterService handles writer use-cases, including the placeholder phone
// allocation every persist goes through.
type WriterService struct {
	repo         writerRepository
	achievements achievementLister
	maxRetries   int
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// WithMetrics attaches the metrics service for allocator counters.
func (s *WriterService) WithMetrics(metrics *MetricsService) *WriterService {
	s.metrics = metrics
	return s
}

// NewWriterService constructs the writer service.
func NewWriterService(repo writerRepository, achievements achievementLister, maxRetries int, validate *validator.Validate, logger *zap.Logger) *WriterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &WriterService{repo: repo, achievements: achievements, maxRetries: maxRetries, validator: validate, logger: logger}
}

// List returns writers and pagination metadata.
func (s *WriterService) List(ctx context.Context, filter models.WriterFilter) ([]models.Writer, *models.Pagination, error) {
	writers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list writers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return writers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single writer.
func (s *WriterService) Get(ctx context.Context, id int64) (*models.Writer, error) {
	return s.load(ctx, id)
}

// Achievements returns a writer's awarded badges.
func (s *WriterService) Achievements(ctx context.Context, id int64) ([]models.WriterAchievement, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	achievements, err := s.achievements.ListByWriter(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return achievements, nil
}

// Create registers a new writer. A genuine 10-digit phone is kept as-is;
// otherwise a placeholder is allocated, retrying against the phone UNIQUE
// constraint so two concurrent creations never share a value.
func (s *WriterService) Create(ctx context.Context, req CreateWriterRequest) (*models.Writer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid writer payload")
	}

	availability := req.AvailabilityStatus
	if availability == "" {
		availability = "available"
	}
	maxTasks := req.MaxConcurrentTasks
	if maxTasks == 0 {
		maxTasks = 5
	}

	writer := &models.Writer{
		Name:               req.Name,
		Email:              req.Email,
		Specialty:          req.Specialty,
		Rating:             models.DefaultWriterRating(),
		AvailabilityStatus: availability,
		MaxConcurrentTasks: maxTasks,
		Level:              models.WriterLevelBronze,
	}

	if genuinePhonePattern.MatchString(req.Phone) {
		writer.Phone = req.Phone
		if err := s.repo.Create(ctx, writer); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "phone already registered")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create writer")
		}
		return writer, nil
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		phone, err := s.nextPlaceholder(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate placeholder phone")
		}
		writer.Phone = phone
		err = s.repo.Create(ctx, writer)
		if err == nil {
			return writer, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create writer")
		}
		s.metrics.RecordAllocatorRetry()
		s.logger.Debug("placeholder phone collision, retrying",
			zap.String("phone", phone), zap.Int("attempt", attempt+1))
	}
	return nil, appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique placeholder phone")
}

// Update modifies an existing writer. A genuine phone is never overwritten
// with a placeholder, and an existing placeholder stays stable unless a
// genuine number replaces it.
func (s *WriterService) Update(ctx context.Context, id int64, req UpdateWriterRequest) (*models.Writer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid writer payload")
	}
	writer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if genuinePhonePattern.MatchString(req.Phone) {
		writer.Phone = req.Phone
	}
	writer.Name = req.Name
	writer.Email = req.Email
	writer.Specialty = req.Specialty
	writer.IsFlagged = req.IsFlagged
	if req.Rating != nil {
		writer.Rating = *req.Rating
	}
	if req.AvailabilityStatus != "" {
		writer.AvailabilityStatus = req.AvailabilityStatus
	}
	if req.MaxConcurrentTasks > 0 {
		writer.MaxConcurrentTasks = req.MaxConcurrentTasks
	}

	rows, err := s.repo.Update(ctx, writer)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "phone already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update writer")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "writer not found")
	}
	return writer, nil
}

// Delete removes a writer.
func (s *WriterService) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete writer")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "writer not found")
	}
	return nil
}

func (s *WriterService) load(ctx context.Context, id int64) (*models.Writer, error) {
	writer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "writer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load writer")
	}
	return writer, nil
}

// nextPlaceholder computes the successor of the highest allocated
// placeholder, zero-padded to 10 digits. Allocation starts at 0000000001.
func (s *WriterService) nextPlaceholder(ctx context.Context) (string, error) {
	highest, err := s.repo.HighestPlaceholderPhone(ctx)
	if err != nil {
		return "", err
	}
	next := int64(1)
	if highest != "" {
		parsed, err := strconv.ParseInt(highest, 10, 64)
		if err != nil {
			return "", fmt.Errorf("parse placeholder phone %q: %w", highest, err)
		}
		next = parsed + 1
	}
	return fmt.Sprintf("%010d", next), nil
}
