package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campusshare/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AchievementRepository handles database operations related to achievement definitions.
type AchievementRepository struct {
	collection *mongo.Collection
}

// NewAchievementRepository creates a new instance of AchievementRepository.
func NewAchievementRepository(db *mongo.Database) *AchievementRepository {
	return &AchievementRepository{
		collection: db.Collection("achievements"),
	}
}

// CreateAchievement inserts a new achievement definition.
func (r *AchievementRepository) CreateAchievement(ctx context.Context, achievement *models.Achievement) (*models.Achievement, error) {
	achievement.CreatedAt = time.Now()
	achievement.UpdatedAt = time.Now()
	achievement.IsActive = true

	result, err := r.collection.InsertOne(ctx, achievement)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert achievement")
		return nil, fmt.Errorf("failed to insert achievement: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	achievement.ID = insertedID
	return achievement, nil
}

// GetAchievementByID fetches an active achievement definition.
func (r *AchievementRepository) GetAchievementByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&achievement)
	if err != nil {
		return nil, fmt.Errorf("failed to find achievement: %v", err)
	}
	return &achievement, nil
}

// GetActiveAchievements returns active definitions, optionally of one type,
// ordered by ascending threshold so awards land lowest-first.
func (r *AchievementRepository) GetActiveAchievements(ctx context.Context, achievementType string) ([]models.Achievement, error) {
	filter := bson.M{"is_active": true}
	if achievementType != "" {
		filter["type"] = achievementType
	}
	opts := options.Find().SetSort(bson.D{{Key: "criteria.count", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %v", err)
	}
	defer cursor.Close(ctx)

	var achievements []models.Achievement
	if err := cursor.All(ctx, &achievements); err != nil {
		return nil, fmt.Errorf("failed to decode achievements: %v", err)
	}
	return achievements, nil
}

// UpdateAchievement applies field updates to an achievement definition.
func (r *AchievementRepository) UpdateAchievement(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithError(err).WithField("achievementID", id.Hex()).Error("Failed to update achievement")
		return fmt.Errorf("failed to update achievement: %v", err)
	}
	return nil
}

// SoftDeleteAchievement marks a definition inactive.
func (r *AchievementRepository) SoftDeleteAchievement(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateAchievement(ctx, id, bson.M{"is_active": false})
}
