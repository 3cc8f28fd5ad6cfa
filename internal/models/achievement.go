package models

import "time"

// AchievementType enumerates the closed set of awardable badges.
type AchievementType string

const (
	AchievementSpeedDemon      AchievementType = "SpeedDemon"
	AchievementPerfectionist   AchievementType = "Perfectionist"
	AchievementStreakMaster    AchievementType = "StreakMaster"
	AchievementQualityChampion AchievementType = "QualityChampion"
)

// WriterAchievement is an awarded badge. Created once per qualifying event;
// never mutated or deleted by the ledger.
type WriterAchievement struct {
	ID              int64           `db:"id" json:"id"`
	WriterID        int64           `db:"writer_id" json:"writerId"`
	AchievementType AchievementType `db:"achievement_type" json:"achievementType"`
	Description     string          `db:"description" json:"description"`
	AwardedAt       time.Time       `db:"awarded_at" json:"awardedAt"`
}
