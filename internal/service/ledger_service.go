package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	SetArchived(ctx context.Context, id string, archived bool) (int64, error)
	AppendPayment(ctx context.Context, id, side string, amount float64, entry types.JSONText) (int64, error)
	UpdateStatus(ctx context.Context, id, status string, entry types.JSONText, completedAt *time.Time) (int64, bool, error)
	ReassignWriter(ctx context.Context, id string, expectedWriterID *int64, newWriterID int64, entry types.JSONText) (int64, error)
	AppendActivity(ctx context.Context, id string, entry types.JSONText) (int64, error)
}

type ledgerStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type ledgerWriterStore interface {
	FindByID(ctx context.Context, id int64) (*models.Writer, error)
	UpdatePerformance(ctx context.Context, id int64, perf models.WriterPerformance) error
}

type achievementInserter interface {
	Create(ctx context.Context, achievement *models.WriterAchievement) error
}

// CreateAssignmentRequest holds the payload for creating assignments.
type CreateAssignmentRequest struct {
	StudentID         string          `json:"studentId" validate:"required"`
	WriterID          *int64          `json:"writerId"`
	Title             string          `json:"title" validate:"required"`
	Type              string          `json:"type" validate:"required"`
	Subject           string          `json:"subject" validate:"required"`
	Level             string          `json:"level" validate:"required"`
	Deadline          time.Time       `json:"deadline" validate:"required"`
	Priority          string          `json:"priority"`
	DocumentLink      string          `json:"documentLink"`
	Description       string          `json:"description"`
	WordCount         int             `json:"wordCount" validate:"min=0"`
	CostPerWord       float64         `json:"costPerWord" validate:"min=0"`
	WriterCostPerWord float64         `json:"writerCostPerWord" validate:"min=0"`
	Price             float64         `json:"price" validate:"min=0"`
	WriterPrice       float64         `json:"writerPrice" validate:"min=0"`
	IsDissertation    bool            `json:"isDissertation"`
	TotalChapters     *int            `json:"totalChapters"`
	Chapters          json.RawMessage `json:"chapters"`
}

// UpdateAssignmentRequest carries the editable descriptive and rate fields.
// Writer changes, payments, status and archive moves go through their own
// operations so the audit trail stays complete.
type UpdateAssignmentRequest struct {
	Title             string          `json:"title" validate:"required"`
	Type              string          `json:"type" validate:"required"`
	Subject           string          `json:"subject" validate:"required"`
	Level             string          `json:"level" validate:"required"`
	Deadline          time.Time       `json:"deadline" validate:"required"`
	Priority          string          `json:"priority"`
	DocumentLink      string          `json:"documentLink"`
	Description       string          `json:"description"`
	WordCount         int             `json:"wordCount" validate:"min=0"`
	CostPerWord       float64         `json:"costPerWord" validate:"min=0"`
	WriterCostPerWord float64         `json:"writerCostPerWord" validate:"min=0"`
	Price             float64         `json:"price" validate:"min=0"`
	WriterPrice       float64         `json:"writerPrice" validate:"min=0"`
	IsDissertation    bool            `json:"isDissertation"`
	TotalChapters     *int            `json:"totalChapters"`
	Chapters          json.RawMessage `json:"chapters"`
}

// ReassignRequest names the writer taking over an assignment. The caller is
// responsible for confirming the handover with the operator first: any amount
// already paid to the current writer becomes a sunk cost.
type ReassignRequest struct {
	WriterID int64  `json:"writerId" validate:"required"`
	Note     string `json:"note"`
}

// RecordPaymentRequest registers money received from the student or paid out
// to the writer.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount"`
	Side   string  `json:"side" validate:"required,oneof=student writer"`
	Note   string  `json:"note"`
}

// ChangeStatusRequest moves an assignment to a new status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// ActivityRequest appends a free-form audit note.
type ActivityRequest struct {
	Note  string `json:"note" validate:"required"`
	Actor string `json:"actor"`
}

// LedgerService owns an assignment's financial fields, status and append-only
// audit trails across its lifecycle.
type LedgerService struct {
	assignments  assignmentRepository
	students     ledgerStudentReader
	writers      ledgerWriterStore
	achievements achievementInserter
	policy       CompletionPolicy
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// WithMetrics attaches the metrics service for domain counters.
func (s *LedgerService) WithMetrics(metrics *MetricsService) *LedgerService {
	s.metrics = metrics
	return s
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(assignments assignmentRepository, students ledgerStudentReader, writers ledgerWriterStore,
	achievements achievementInserter, policy CompletionPolicy, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = NewStandardCompletionPolicy()
	}
	return &LedgerService{
		assignments:  assignments,
		students:     students,
		writers:      writers,
		achievements: achievements,
		policy:       policy,
		validator:    validate,
		logger:       logger,
	}
}

// List returns assignments and pagination metadata.
func (s *LedgerService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return assignments, pagination, nil
}

// Get returns a single assignment.
func (s *LedgerService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	return s.load(ctx, id)
}

// Create opens a new assignment with status Pending, empty histories and no
// sunk costs.
func (s *LedgerService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if req.WriterID != nil {
		if _, err := s.writers.FindByID(ctx, *req.WriterID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "writer not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load writer")
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = "Medium"
	}

	assignment := &models.Assignment{
		StudentID:         req.StudentID,
		WriterID:          req.WriterID,
		Title:             req.Title,
		Type:              req.Type,
		Subject:           req.Subject,
		Level:             req.Level,
		Deadline:          req.Deadline,
		Status:            models.StatusPending,
		Priority:          priority,
		DocumentLink:      req.DocumentLink,
		Description:       req.Description,
		WordCount:         req.WordCount,
		CostPerWord:       req.CostPerWord,
		WriterCostPerWord: req.WriterCostPerWord,
		Price:             req.Price,
		WriterPrice:       req.WriterPrice,
		IsDissertation:    req.IsDissertation,
		TotalChapters:     req.TotalChapters,
		Chapters:          types.JSONText(req.Chapters),
		ActivityLog:       models.EmptyHistory(),
		PaymentHistory:    models.EmptyHistory(),
		StatusHistory:     models.EmptyHistory(),
		Attachments:       models.EmptyHistory(),
	}
	if len(assignment.Chapters) == 0 {
		assignment.Chapters = types.JSONText(`[]`)
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Update modifies descriptive and rate fields and appends an activity entry
// so the edit is reconstructable.
func (s *LedgerService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment.Title = req.Title
	assignment.Type = req.Type
	assignment.Subject = req.Subject
	assignment.Level = req.Level
	assignment.Deadline = req.Deadline
	if req.Priority != "" {
		assignment.Priority = req.Priority
	}
	assignment.DocumentLink = req.DocumentLink
	assignment.Description = req.Description
	assignment.WordCount = req.WordCount
	assignment.CostPerWord = req.CostPerWord
	assignment.WriterCostPerWord = req.WriterCostPerWord
	assignment.Price = req.Price
	assignment.WriterPrice = req.WriterPrice
	assignment.IsDissertation = req.IsDissertation
	assignment.TotalChapters = req.TotalChapters
	if len(req.Chapters) > 0 {
		assignment.Chapters = types.JSONText(req.Chapters)
	}

	rows, err := s.assignments.Update(ctx, assignment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	s.appendActivity(ctx, id, models.ActivityEntry{At: time.Now().UTC(), Note: "assignment details updated"})
	return assignment, nil
}

// Delete removes an assignment permanently. Archive is the soft path.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	rows, err := s.assignments.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

// Reassign hands the assignment to a different writer. Whatever was already
// paid to the current writer moves into sunk costs and the writer-side
// financial sub-record starts fresh. The store update is conditioned on the
// last-known writer id, so a concurrent reassignment surfaces as a conflict
// instead of double-crediting sunk costs.
func (s *LedgerService) Reassign(ctx context.Context, id string, req ReassignRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.WriterID != nil && *assignment.WriterID == req.WriterID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment is already assigned to this writer")
	}
	if _, err := s.writers.FindByID(ctx, req.WriterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "writer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load writer")
	}

	note := req.Note
	if note == "" {
		note = "writer reassigned"
	}
	newWriterID := req.WriterID
	change := models.StatusChange{
		From:         assignment.Status,
		To:           assignment.Status,
		At:           time.Now().UTC(),
		Note:         note,
		FromWriterID: assignment.WriterID,
		ToWriterID:   &newWriterID,
	}
	entry, err := models.MarshalEntry(change)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode history entry")
	}

	rows, err := s.assignments.ReassignWriter(ctx, id, assignment.WriterID, req.WriterID, entry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign writer")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment changed concurrently, re-fetch and retry")
	}
	s.metrics.RecordReassignment()
	return s.load(ctx, id)
}

// RecordPayment appends a payment entry and moves the matching balance in a
// single atomic store update.
func (s *LedgerService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if req.Amount < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment amount cannot be negative")
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	payment := models.PaymentEntry{
		Amount: req.Amount,
		Side:   req.Side,
		At:     time.Now().UTC(),
		Note:   req.Note,
	}
	entry, err := models.MarshalEntry(payment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode history entry")
	}

	rows, err := s.assignments.AppendPayment(ctx, id, req.Side, req.Amount, entry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return s.load(ctx, id)
}

// ChangeStatus appends the transition and, on completion, stamps completedAt
// once and feeds the completion policy for the assigned writer.
func (s *LedgerService) ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	change := models.StatusChange{From: assignment.Status, To: req.Status, At: now, Note: req.Note}
	entry, err := models.MarshalEntry(change)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode history entry")
	}

	var completedAt *time.Time
	if req.Status == models.StatusCompleted {
		completedAt = &now
	}

	rows, completedNow, err := s.assignments.UpdateStatus(ctx, id, req.Status, entry, completedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change status")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}

	// The store reports whether this update stamped completed_at, so racing
	// completions run the policy exactly once.
	if completedNow {
		s.metrics.RecordCompletion()
		if assignment.WriterID != nil {
			s.applyCompletion(ctx, id, *assignment.WriterID)
		}
	}
	return s.load(ctx, id)
}

// Archive soft-deletes without touching financial or audit fields.
func (s *LedgerService) Archive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

// Unarchive restores a soft-deleted assignment.
func (s *LedgerService) Unarchive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

// Duplicate produces a fresh Pending assignment carrying only the template
// fields of the source: no writer, no payments, no histories, no sunk costs.
func (s *LedgerService) Duplicate(ctx context.Context, id string) (*models.Assignment, error) {
	source, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	duplicate := &models.Assignment{
		StudentID:         source.StudentID,
		Title:             source.Title,
		Type:              source.Type,
		Subject:           source.Subject,
		Level:             source.Level,
		Deadline:          source.Deadline,
		Status:            models.StatusPending,
		Priority:          source.Priority,
		Description:       source.Description,
		WordCount:         source.WordCount,
		CostPerWord:       source.CostPerWord,
		WriterCostPerWord: source.WriterCostPerWord,
		Price:             source.Price,
		IsDissertation:    source.IsDissertation,
		TotalChapters:     source.TotalChapters,
		Chapters:          source.Chapters,
		ActivityLog:       models.EmptyHistory(),
		PaymentHistory:    models.EmptyHistory(),
		StatusHistory:     models.EmptyHistory(),
		Attachments:       models.EmptyHistory(),
	}
	if len(duplicate.Chapters) == 0 {
		duplicate.Chapters = types.JSONText(`[]`)
	}
	if err := s.assignments.Create(ctx, duplicate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate assignment")
	}
	return duplicate, nil
}

// RecordActivity appends a free-form audit note.
func (s *LedgerService) RecordActivity(ctx context.Context, id string, req ActivityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	entry, err := models.MarshalEntry(models.ActivityEntry{At: time.Now().UTC(), Actor: req.Actor, Note: req.Note})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode history entry")
	}
	rows, err := s.assignments.AppendActivity(ctx, id, entry)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record activity")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

func (s *LedgerService) load(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

func (s *LedgerService) setArchived(ctx context.Context, id string, archived bool) error {
	rows, err := s.assignments.SetArchived(ctx, id, archived)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update archive state")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

func (s *LedgerService) appendActivity(ctx context.Context, id string, activity models.ActivityEntry) {
	entry, err := models.MarshalEntry(activity)
	if err != nil {
		s.logger.Warn("failed to encode activity entry", zap.Error(err))
		return
	}
	if _, err := s.assignments.AppendActivity(ctx, id, entry); err != nil {
		s.logger.Warn("failed to append activity entry", zap.String("assignment_id", id), zap.Error(err))
	}
}

// applyCompletion runs the pluggable performance policy. Policy failures are
// logged, not surfaced: the status change already committed.
func (s *LedgerService) applyCompletion(ctx context.Context, assignmentID string, writerID int64) {
	writer, err := s.writers.FindByID(ctx, writerID)
	if err != nil {
		s.logger.Warn("completion policy skipped, writer missing", zap.Int64("writer_id", writerID), zap.Error(err))
		return
	}
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		s.logger.Warn("completion policy skipped, assignment missing", zap.String("assignment_id", assignmentID), zap.Error(err))
		return
	}
	perf, achievements, err := s.policy.OnCompletion(ctx, writer, assignment)
	if err != nil {
		s.logger.Warn("completion policy failed", zap.Int64("writer_id", writerID), zap.Error(err))
		return
	}
	if err := s.writers.UpdatePerformance(ctx, writerID, perf); err != nil {
		s.logger.Warn("failed to persist writer performance", zap.Int64("writer_id", writerID), zap.Error(err))
		return
	}
	for i := range achievements {
		achievements[i].WriterID = writerID
		if err := s.achievements.Create(ctx, &achievements[i]); err != nil {
			s.logger.Warn("failed to persist achievement", zap.Int64("writer_id", writerID), zap.Error(err))
		}
	}
}
