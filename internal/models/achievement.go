package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Achievement types mirror the countable user actions.
const (
	AchievementUpload     = "upload"
	AchievementDownload   = "download"
	AchievementLike       = "like"
	AchievementComment    = "comment"
	AchievementStudyGroup = "study_group"
	AchievementRequest    = "request"
	AchievementSpecial    = "special"
)

// AllowedAchievementTypes lists the valid achievement type tags.
var AllowedAchievementTypes = map[string]bool{
	AchievementUpload:     true,
	AchievementDownload:   true,
	AchievementLike:       true,
	AchievementComment:    true,
	AchievementStudyGroup: true,
	AchievementRequest:    true,
	AchievementSpecial:    true,
}

// AllowedRarities lists the valid rarities.
var AllowedRarities = map[string]bool{
	"common":    true,
	"uncommon":  true,
	"rare":      true,
	"epic":      true,
	"legendary": true,
}

// AchievementCriteria holds the award threshold. Timeframe is stored but
// only all-time counting is implemented.
type AchievementCriteria struct {
	Count     int64  `bson:"count" json:"count"`
	Timeframe string `bson:"timeframe,omitempty" json:"timeframe,omitempty"`
}

// Achievement is a badge definition. Immutable after creation except by
// admin edit or soft delete.
type Achievement struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Icon        string              `bson:"icon,omitempty" json:"icon,omitempty"`
	Type        string              `bson:"type" json:"type"`
	Criteria    AchievementCriteria `bson:"criteria" json:"criteria"`
	Points      int64               `bson:"points" json:"points"`
	Rarity      string              `bson:"rarity" json:"rarity"`
	IsActive    bool                `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// UserAchievement joins a user to an earned achievement. The (user_id,
// achievement_id) pair is covered by a unique index, so a duplicate insert
// means "already earned" and is never surfaced as an error.
type UserAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	AchievementID primitive.ObjectID `bson:"achievement_id" json:"achievement_id"`
	EarnedAt      time.Time          `bson:"earned_at" json:"earned_at"`
	Progress      int64              `bson:"progress" json:"progress"`
}

// EarnedAchievement is a user achievement joined with its definition.
type EarnedAchievement struct {
	UserAchievement `bson:",inline"`
	Achievement     Achievement `bson:"achievement" json:"achievement"`
}
