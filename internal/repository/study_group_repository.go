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

// StudyGroupRepository handles database operations related to study groups.
type StudyGroupRepository struct {
	collection *mongo.Collection
}

// NewStudyGroupRepository creates a new instance of StudyGroupRepository.
func NewStudyGroupRepository(db *mongo.Database) *StudyGroupRepository {
	return &StudyGroupRepository{
		collection: db.Collection("study_groups"),
	}
}

// CreateStudyGroup inserts a new study group.
func (r *StudyGroupRepository) CreateStudyGroup(ctx context.Context, group *models.StudyGroup) (*models.StudyGroup, error) {
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()
	group.IsActive = true

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert study group")
		return nil, fmt.Errorf("failed to insert study group: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	group.ID = insertedID

	logrus.WithField("groupID", group.ID.Hex()).Info("Study group created successfully")
	return group, nil
}

// GetStudyGroupByID fetches an active study group by its ID.
func (r *StudyGroupRepository) GetStudyGroupByID(ctx context.Context, id primitive.ObjectID) (*models.StudyGroup, error) {
	var group models.StudyGroup
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&group)
	if err != nil {
		return nil, fmt.Errorf("failed to find study group: %v", err)
	}
	return &group, nil
}

// GetStudyGroups fetches a page of active groups, optionally by course.
func (r *StudyGroupRepository) GetStudyGroups(ctx context.Context, courseID *primitive.ObjectID, page, limit int64) ([]models.StudyGroup, int64, error) {
	filter := bson.M{"is_active": true}
	if courseID != nil {
		filter["course_id"] = *courseID
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count study groups: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch study groups: %v", err)
	}
	defer cursor.Close(ctx)

	var groups []models.StudyGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, 0, fmt.Errorf("failed to decode study groups: %v", err)
	}
	return groups, total, nil
}

// SearchStudyGroups matches active groups by name or description.
func (r *StudyGroupRepository) SearchStudyGroups(ctx context.Context, query string, limit int64) ([]models.StudyGroup, error) {
	filter := bson.M{
		"is_active": true,
		"$or": bson.A{
			bson.M{"name": bson.M{"$regex": query, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": query, "$options": "i"}},
		},
	}
	opts := options.Find().SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search study groups: %v", err)
	}
	defer cursor.Close(ctx)

	var groups []models.StudyGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode study groups: %v", err)
	}
	return groups, nil
}

// GetStudyGroupsByMember returns active groups the user belongs to.
func (r *StudyGroupRepository) GetStudyGroupsByMember(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.StudyGroup, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true, "members.user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member groups: %v", err)
	}
	defer cursor.Close(ctx)

	var groups []models.StudyGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode member groups: %v", err)
	}
	return groups, nil
}

// UpdateStudyGroup applies field updates to a group document.
func (r *StudyGroupRepository) UpdateStudyGroup(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithError(err).WithField("groupID", id.Hex()).Error("Failed to update study group")
		return fmt.Errorf("failed to update study group: %v", err)
	}
	return nil
}

// SoftDeleteStudyGroup marks a group inactive.
func (r *StudyGroupRepository) SoftDeleteStudyGroup(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateStudyGroup(ctx, id, bson.M{"is_active": false})
}

// CountActiveGroups counts groups that have not been soft-deleted.
func (r *StudyGroupRepository) CountActiveGroups(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count study groups: %v", err)
	}
	return count, nil
}

// CountByMember counts the user's active group memberships.
func (r *StudyGroupRepository) CountByMember(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true, "members.user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %v", err)
	}
	return count, nil
}
