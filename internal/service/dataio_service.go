package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/internal/repository"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type studentBatchStore interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Truncate(ctx context.Context, exec sqlx.ExtContext) error
}

type writerBatchStore interface {
	HighestPlaceholderPhone(ctx context.Context) (string, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, writer *models.Writer) error
	Truncate(ctx context.Context, exec sqlx.ExtContext) error
}

type assignmentBatchStore interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error
	Truncate(ctx context.Context, exec sqlx.ExtContext) error
}

type truncator interface {
	Truncate(ctx context.Context, exec sqlx.ExtContext) error
}

// ImportRequest is a full backup payload. Records are upserted by id so a
// re-imported backup converges instead of duplicating.
type ImportRequest struct {
	Students    []models.Student    `json:"students"`
	Writers     []models.Writer     `json:"writers"`
	Assignments []models.Assignment `json:"assignments"`
}

// ImportResult reports the counts written in one import.
type ImportResult struct {
	Students    int `json:"students"`
	Writers     int `json:"writers"`
	Assignments int `json:"assignments"`
}

// DataIOService restores backups and wipes the dataset. Both operations run
// in a single transaction so a failed import leaves nothing behind.
type DataIOService struct {
	db           *sqlx.DB
	students     studentBatchStore
	writers      writerBatchStore
	assignments  assignmentBatchStore
	achievements truncator
	universities truncator
	logger       *zap.Logger
}

// NewDataIOService constructs the data import/export service.
func NewDataIOService(db *sqlx.DB, students studentBatchStore, writers writerBatchStore, assignments assignmentBatchStore, achievements, universities truncator, logger *zap.Logger) *DataIOService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataIOService{
		db:           db,
		students:     students,
		writers:      writers,
		assignments:  assignments,
		achievements: achievements,
		universities: universities,
		logger:       logger,
	}
}

// Import upserts students, then writers, then assignments, preserving
// referential order. Writers without a genuine 10-digit phone are issued
// placeholders from the reserved block, continuing past the highest one
// already stored.
func (s *DataIOService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	nextPlaceholder, err := s.placeholderStart(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read placeholder phones")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start import transaction")
	}
	defer func() { _ = tx.Rollback() }()

	result := &ImportResult{}
	now := time.Now()

	for i := range req.Students {
		student := req.Students[i]
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		if err := s.students.Upsert(ctx, tx, &student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import student")
		}
		result.Students++
	}

	for i := range req.Writers {
		writer := req.Writers[i]
		if !genuinePhonePattern.MatchString(writer.Phone) {
			writer.Phone = fmt.Sprintf("%010d", nextPlaceholder)
			nextPlaceholder++
		}
		if writer.Rating.Count == 0 {
			writer.Rating = models.DefaultWriterRating()
		}
		if writer.AvailabilityStatus == "" {
			writer.AvailabilityStatus = "available"
		}
		if writer.MaxConcurrentTasks == 0 {
			writer.MaxConcurrentTasks = 5
		}
		if writer.Level == "" {
			writer.Level = models.WriterLevelBronze
		}
		if writer.LastActive.IsZero() {
			writer.LastActive = now
		}
		if err := s.writers.Upsert(ctx, tx, &writer); err != nil {
			// The placeholder start is read before the transaction opens, so
			// a writer created concurrently can claim the same number.
			if repository.IsUniqueViolation(err) {
				return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "writer phone collided with a concurrent change, retry the import")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import writer")
		}
		result.Writers++
	}

	for i := range req.Assignments {
		assignment := req.Assignments[i]
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.Status == "" {
			assignment.Status = models.StatusPending
		}
		if len(assignment.ActivityLog) == 0 {
			assignment.ActivityLog = models.EmptyHistory()
		}
		if len(assignment.PaymentHistory) == 0 {
			assignment.PaymentHistory = models.EmptyHistory()
		}
		if len(assignment.StatusHistory) == 0 {
			assignment.StatusHistory = models.EmptyHistory()
		}
		if len(assignment.Attachments) == 0 {
			assignment.Attachments = models.EmptyHistory()
		}
		if err := s.assignments.Upsert(ctx, tx, &assignment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import assignment")
		}
		result.Assignments++
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit import")
	}

	s.logger.Info("backup imported",
		zap.Int("students", result.Students),
		zap.Int("writers", result.Writers),
		zap.Int("assignments", result.Assignments))
	return result, nil
}

// ClearAll wipes every dataset table in dependency order.
func (s *DataIOService) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start clear transaction")
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		name string
		t    truncator
	}{
		{"assignments", s.assignments},
		{"achievements", s.achievements},
		{"students", s.students},
		{"writers", s.writers},
		{"universities", s.universities},
	}
	for _, step := range steps {
		if err := step.t.Truncate(ctx, tx); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear "+step.name)
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit clear")
	}

	s.logger.Warn("all data cleared")
	return nil
}

func (s *DataIOService) placeholderStart(ctx context.Context) (int64, error) {
	highest, err := s.writers.HighestPlaceholderPhone(ctx)
	if err != nil {
		return 0, err
	}
	if highest == "" {
		return 1, nil
	}
	n, err := strconv.ParseInt(highest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse placeholder phone %q: %w", highest, err)
	}
	return n + 1, nil
}
