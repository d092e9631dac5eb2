package services

import (
	"context"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type achievementStore interface {
	CreateAchievement(ctx context.Context, achievement *models.Achievement) (*models.Achievement, error)
	GetAchievementByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error)
	GetActiveAchievements(ctx context.Context, achievementType string) ([]models.Achievement, error)
	UpdateAchievement(ctx context.Context, id primitive.ObjectID, update bson.M) error
	SoftDeleteAchievement(ctx context.Context, id primitive.ObjectID) error
}

type userAchievementStore interface {
	InsertUserAchievement(ctx context.Context, record *models.UserAchievement) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error)
	GetEarnedWithDetail(ctx context.Context, userID primitive.ObjectID) ([]models.EarnedAchievement, error)
	Leaderboard(ctx context.Context, limit int64) ([]repository.LeaderboardEntry, error)
}

type achievementListUpdater interface {
	AddAchievement(ctx context.Context, userID, achievementID primitive.ObjectID) error
}

type achievementNotifier interface {
	NotifyAchievementEarned(ctx context.Context, recipientID primitive.ObjectID, achievementName string, achievementID primitive.ObjectID) error
}

// AchievementService owns achievement definitions and the awarder. The
// awarder is always invoked as a fire-and-forget side effect of another
// action, so it logs and swallows every failure.
type AchievementService struct {
	achRepo  achievementStore
	uaRepo   userAchievementStore
	userRepo achievementListUpdater
	notifier achievementNotifier
}

// NewAchievementService creates a new instance of AchievementService.
func NewAchievementService(achRepo achievementStore, uaRepo userAchievementStore, userRepo achievementListUpdater, notifier achievementNotifier) *AchievementService {
	return &AchievementService{
		achRepo:  achRepo,
		uaRepo:   uaRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// CheckAndAward compares the caller-computed cumulative count against every
// active achievement of the given type and awards each newly met threshold.
// A single call may award several achievements at once. Per-award failures,
// including the unique-index violation two concurrent calls can race into,
// never stop the loop and never reach the caller.
func (s *AchievementService) CheckAndAward(ctx context.Context, userID primitive.ObjectID, achievementType string, count int64) {
	log := logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"type":   achievementType,
		"count":  count,
	})

	achievements, err := s.achRepo.GetActiveAchievements(ctx, achievementType)
	if err != nil {
		log.WithError(err).Warn("Award check failed to fetch achievements")
		return
	}
	if len(achievements) == 0 {
		return
	}

	existing, err := s.uaRepo.GetByUser(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("Award check failed to fetch earned achievements")
		return
	}
	earned := make(map[primitive.ObjectID]bool, len(existing))
	for _, record := range existing {
		earned[record.AchievementID] = true
	}

	for _, achievement := range achievements {
		if earned[achievement.ID] || count < achievement.Criteria.Count {
			continue
		}

		record := &models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			Progress:      count,
		}
		if err := s.uaRepo.InsertUserAchievement(ctx, record); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the race against a concurrent award; already earned.
				log.WithField("achievement", achievement.Name).Debug("Achievement already earned, skipping")
				continue
			}
			log.WithError(err).WithField("achievement", achievement.Name).Warn("Failed to record achievement award")
			continue
		}

		if err := s.userRepo.AddAchievement(ctx, userID, achievement.ID); err != nil {
			log.WithError(err).WithField("achievement", achievement.Name).Warn("Failed to sync achievement onto user")
		}

		if err := s.notifier.NotifyAchievementEarned(ctx, userID, achievement.Name, achievement.ID); err != nil {
			log.WithError(err).WithField("achievement", achievement.Name).Warn("Failed to send achievement notification")
		}

		log.WithField("achievement", achievement.Name).Info("Achievement awarded")
	}
}

// CreateAchievement validates and stores a new definition. Admin only.
func (s *AchievementService) CreateAchievement(ctx context.Context, achievement *models.Achievement) (*models.Achievement, error) {
	if achievement.Name == "" || achievement.Description == "" {
		return nil, apperrors.BadRequest("name and description are required")
	}
	if !models.AllowedAchievementTypes[achievement.Type] {
		return nil, apperrors.BadRequest("invalid achievement type %q", achievement.Type)
	}
	if achievement.Criteria.Count <= 0 {
		return nil, apperrors.BadRequest("criteria count must be positive")
	}
	if achievement.Rarity == "" {
		achievement.Rarity = "common"
	}
	if !models.AllowedRarities[achievement.Rarity] {
		return nil, apperrors.BadRequest("invalid rarity %q", achievement.Rarity)
	}
	return s.achRepo.CreateAchievement(ctx, achievement)
}

// UpdateAchievement applies admin edits to a definition.
func (s *AchievementService) UpdateAchievement(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.BadRequest("invalid achievement ID")
	}
	if _, err := s.achRepo.GetAchievementByID(ctx, objID); err != nil {
		return apperrors.NotFound("achievement not found")
	}
	return s.achRepo.UpdateAchievement(ctx, objID, update)
}

// DeleteAchievement soft-deletes a definition.
func (s *AchievementService) DeleteAchievement(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.BadRequest("invalid achievement ID")
	}
	if _, err := s.achRepo.GetAchievementByID(ctx, objID); err != nil {
		return apperrors.NotFound("achievement not found")
	}
	return s.achRepo.SoftDeleteAchievement(ctx, objID)
}

// GetActiveAchievements lists active definitions, optionally by type.
func (s *AchievementService) GetActiveAchievements(ctx context.Context, achievementType string) ([]models.Achievement, error) {
	if achievementType != "" && !models.AllowedAchievementTypes[achievementType] {
		return nil, apperrors.BadRequest("invalid achievement type %q", achievementType)
	}
	return s.achRepo.GetActiveAchievements(ctx, achievementType)
}

// GetUserAchievements returns the user's earned badges with detail.
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.EarnedAchievement, error) {
	return s.uaRepo.GetEarnedWithDetail(ctx, userID)
}

// Leaderboard ranks users by total achievement points.
func (s *AchievementService) Leaderboard(ctx context.Context, limit int64) ([]repository.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.uaRepo.Leaderboard(ctx, limit)
}
