package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campusshare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserAchievementRepository handles the (user, achievement) join records.
// The collection carries a unique compound index on user_id + achievement_id.
type UserAchievementRepository struct {
	collection *mongo.Collection
}

// NewUserAchievementRepository creates a new instance of UserAchievementRepository.
func NewUserAchievementRepository(db *mongo.Database) *UserAchievementRepository {
	return &UserAchievementRepository{
		collection: db.Collection("user_achievements"),
	}
}

// InsertUserAchievement records an award. A duplicate-key error passes
// through untranslated so callers can treat it as "already earned".
func (r *UserAchievementRepository) InsertUserAchievement(ctx context.Context, record *models.UserAchievement) error {
	record.EarnedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

// GetByUser returns the user's award records.
func (r *UserAchievementRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user achievements: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.UserAchievement
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode user achievements: %v", err)
	}
	return records, nil
}

// GetEarnedWithDetail joins the user's awards with achievement definitions.
func (r *UserAchievementRepository) GetEarnedWithDetail(ctx context.Context, userID primitive.ObjectID) ([]models.EarnedAchievement, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "achievements",
			"localField":   "achievement_id",
			"foreignField": "_id",
			"as":           "achievement",
		}}},
		{{Key: "$unwind", Value: "$achievement"}},
		{{Key: "$sort", Value: bson.M{"earned_at": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to join user achievements: %v", err)
	}
	defer cursor.Close(ctx)

	var earned []models.EarnedAchievement
	if err := cursor.All(ctx, &earned); err != nil {
		return nil, fmt.Errorf("failed to decode earned achievements: %v", err)
	}
	return earned, nil
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	UserID primitive.ObjectID `bson:"_id" json:"user_id"`
	Points int64              `bson:"points" json:"points"`
	Badges int64              `bson:"badges" json:"badges"`
}

// Leaderboard ranks users by total achievement points.
func (r *UserAchievementRepository) Leaderboard(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "achievements",
			"localField":   "achievement_id",
			"foreignField": "_id",
			"as":           "achievement",
		}}},
		{{Key: "$unwind", Value: "$achievement"}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$user_id",
			"points": bson.M{"$sum": "$achievement.points"},
			"badges": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"points": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %v", err)
	}
	return entries, nil
}
