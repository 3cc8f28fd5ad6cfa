package service

import (
	"context"
	"time"

	"github.com/quilldesk/brokerage-api/internal/models"
)

// CompletionPolicy computes updated performance fields and any new
// achievements when a writer completes an assignment. Level, points, streak
// and badge thresholds live behind this interface so deployments can swap
// the scoring rules without touching the ledger.
type CompletionPolicy interface {
	OnCompletion(ctx context.Context, writer *models.Writer, assignment *models.Assignment) (models.WriterPerformance, []models.WriterAchievement, error)
}

// StandardCompletionPolicy is the shipped default: it bumps the delivery
// counters and freshness timestamp and awards nothing.
type StandardCompletionPolicy struct{}

// NewStandardCompletionPolicy constructs the default policy.
func NewStandardCompletionPolicy() *StandardCompletionPolicy {
	return &StandardCompletionPolicy{}
}

// OnCompletion implements CompletionPolicy.
func (p *StandardCompletionPolicy) OnCompletion(_ context.Context, writer *models.Writer, assignment *models.Assignment) (models.WriterPerformance, []models.WriterAchievement, error) {
	perf := models.WriterPerformance{
		TotalAssignments:     writer.TotalAssignments,
		CompletedAssignments: writer.CompletedAssignments + 1,
		OnTimeDeliveries:     writer.OnTimeDeliveries,
		Level:                writer.Level,
		Points:               writer.Points,
		Streak:               writer.Streak,
		Rating:               writer.Rating,
		LastActive:           time.Now().UTC(),
	}
	if perf.Level == "" {
		perf.Level = models.WriterLevelBronze
	}

	onTime := assignment.CompletedAt == nil || !assignment.CompletedAt.After(assignment.Deadline)
	if onTime {
		perf.OnTimeDeliveries++
	}

	return perf, nil, nil
}
