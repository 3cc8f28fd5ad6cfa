package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type ledgerTotalsReader interface {
	Totals(ctx context.Context) (*models.LedgerTotals, error)
}

type entityCounter interface {
	Count(ctx context.Context) (int, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardService composes the money-flow overview. Summaries are served
// from Redis when fresh; a cache failure only costs a recompute.
type DashboardService struct {
	assignments  ledgerTotalsReader
	students     entityCounter
	writers      entityCounter
	universities entityCounter
	cache        summaryCache
	ttl          time.Duration
	logger       *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(assignments ledgerTotalsReader, students, writers, universities entityCounter, cache summaryCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		assignments:  assignments,
		students:     students,
		writers:      writers,
		universities: universities,
		cache:        cache,
		ttl:          ttl,
		logger:       logger,
	}
}

// Summary returns the dashboard overview, recomputing on cache miss.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if s.cache != nil {
		var cached models.DashboardSummary
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

// Invalidate drops the cached summary so the next read recomputes.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compute(ctx context.Context) (*models.DashboardSummary, error) {
	totals, err := s.assignments.Totals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate ledger totals")
	}

	students, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	writers, err := s.writers.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count writers")
	}
	universities, err := s.universities.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count universities")
	}

	return &models.DashboardSummary{
		Students:           students,
		Writers:            writers,
		Universities:       universities,
		Assignments:        totals.Assignments,
		Completed:          totals.Completed,
		Receivable:         totals.Receivable,
		WriterPayable:      totals.WriterPayable,
		SunkCosts:          totals.SunkCosts,
		CollectedPayments:  totals.CollectedPayments,
		WriterDisbursement: totals.WriterDisbursement,
		GeneratedAt:        time.Now(),
	}, nil
}
