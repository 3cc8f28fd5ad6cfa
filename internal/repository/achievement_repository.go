package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quilldesk/brokerage-api/internal/models"
)

// AchievementRepository manages persistence for writer achievements.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository constructs an AchievementRepository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListByWriter returns a writer's achievements, newest first.
func (r *AchievementRepository) ListByWriter(ctx context.Context, writerID int64) ([]models.WriterAchievement, error) {
	const query = `SELECT id, writer_id, achievement_type, description, awarded_at
        FROM writer_achievements WHERE writer_id = $1 ORDER BY awarded_at DESC`
	var achievements []models.WriterAchievement
	if err := r.db.SelectContext(ctx, &achievements, query, writerID); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

// Create inserts an awarded achievement.
func (r *AchievementRepository) Create(ctx context.Context, achievement *models.WriterAchievement) error {
	if achievement.AwardedAt.IsZero() {
		achievement.AwardedAt = time.Now().UTC()
	}
	const query = `INSERT INTO writer_achievements (writer_id, achievement_type, description, awarded_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, achievement.WriterID, achievement.AchievementType,
		achievement.Description, achievement.AwardedAt).Scan(&achievement.ID); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// Truncate removes every achievement. Used by the bulk data reset.
func (r *AchievementRepository) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	target := sqlx.ExtContext(r.db)
	if exec != nil {
		target = exec
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM writer_achievements`); err != nil {
		return fmt.Errorf("truncate achievements: %w", err)
	}
	return nil
}
