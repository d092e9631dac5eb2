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

// ResourceRepository handles database operations related to resources.
type ResourceRepository struct {
	collection *mongo.Collection
}

// NewResourceRepository creates a new instance of ResourceRepository.
func NewResourceRepository(db *mongo.Database) *ResourceRepository {
	return &ResourceRepository{
		collection: db.Collection("resources"),
	}
}

// CreateResource inserts a new resource.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	resource.CreatedAt = time.Now()
	resource.UpdatedAt = time.Now()
	resource.IsActive = true

	result, err := r.collection.InsertOne(ctx, resource)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert resource")
		return nil, fmt.Errorf("failed to insert resource: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	resource.ID = insertedID

	logrus.WithField("resourceID", resource.ID.Hex()).Info("Resource created successfully")
	return resource, nil
}

// GetResourceByID fetches an active resource by its ID.
func (r *ResourceRepository) GetResourceByID(ctx context.Context, id primitive.ObjectID) (*models.Resource, error) {
	var resource models.Resource
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&resource)
	if err != nil {
		return nil, fmt.Errorf("failed to find resource: %v", err)
	}
	return &resource, nil
}

// ResourceFilter narrows list queries.
type ResourceFilter struct {
	CourseID   *primitive.ObjectID
	UploaderID *primitive.ObjectID
	Category   string
	Search     string
}

// GetResources fetches a page of active resources matching the filter.
func (r *ResourceRepository) GetResources(ctx context.Context, filter ResourceFilter, page, limit int64) ([]models.Resource, int64, error) {
	query := bson.M{"is_active": true}
	if filter.CourseID != nil {
		query["course_id"] = *filter.CourseID
	}
	if filter.UploaderID != nil {
		query["uploader_id"] = *filter.UploaderID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count resources: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch resources: %v", err)
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, 0, fmt.Errorf("failed to decode resources: %v", err)
	}
	return resources, total, nil
}

// GetRecentResources returns the newest active resources.
func (r *ResourceRepository) GetRecentResources(ctx context.Context, limit int64) ([]models.Resource, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent resources: %v", err)
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode recent resources: %v", err)
	}
	return resources, nil
}

// GetRecentResourcesByUploader returns the uploader's newest active resources.
func (r *ResourceRepository) GetRecentResourcesByUploader(ctx context.Context, uploaderID primitive.ObjectID, limit int64) ([]models.Resource, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true, "uploader_id": uploaderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch uploader resources: %v", err)
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode uploader resources: %v", err)
	}
	return resources, nil
}

// GetPinnedResources returns active pinned resources.
func (r *ResourceRepository) GetPinnedResources(ctx context.Context) ([]models.Resource, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true, "is_pinned": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pinned resources: %v", err)
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode pinned resources: %v", err)
	}
	return resources, nil
}

// UpdateResource applies field updates to a resource document.
func (r *ResourceRepository) UpdateResource(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithError(err).WithField("resourceID", id.Hex()).Error("Failed to update resource")
		return fmt.Errorf("failed to update resource: %v", err)
	}
	return nil
}

// SoftDeleteResource marks a resource inactive.
func (r *ResourceRepository) SoftDeleteResource(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateResource(ctx, id, bson.M{"is_active": false})
}

// IncrementDownloads bumps the download counter and returns the new value.
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var resource models.Resource
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$inc": bson.M{"downloads": 1}},
		opts,
	).Decode(&resource)
	if err != nil {
		return 0, fmt.Errorf("failed to increment downloads: %v", err)
	}
	return resource.Downloads, nil
}

// CountResources counts resources matching the given flags.
func (r *ResourceRepository) CountResources(ctx context.Context, approvedOnly bool, since time.Time) (int64, error) {
	filter := bson.M{"is_active": true}
	if approvedOnly {
		filter["is_approved"] = true
	}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gte": since}
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %v", err)
	}
	return count, nil
}

// CountByUploader counts the uploader's active resources.
func (r *ResourceRepository) CountByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true, "uploader_id": uploaderID})
	if err != nil {
		return 0, fmt.Errorf("failed to count uploader resources: %v", err)
	}
	return count, nil
}

// SumLikesByUploader totals the likes received across an uploader's resources.
func (r *ResourceRepository) SumLikesByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true, "uploader_id": uploaderID}}},
		{{Key: "$project", Value: bson.M{"likes": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$likes"}}}},
	}
	return r.aggregateTotal(ctx, pipeline)
}

// SumDownloadsByUploader totals the downloads of an uploader's resources.
func (r *ResourceRepository) SumDownloadsByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true, "uploader_id": uploaderID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$downloads"}}}},
	}
	return r.aggregateTotal(ctx, pipeline)
}

// CountCommentsByUser counts comments the user has authored across resources.
func (r *ResourceRepository) CountCommentsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true, "comments.user_id": userID}}},
		{{Key: "$unwind", Value: "$comments"}},
		{{Key: "$match", Value: bson.M{"comments.user_id": userID}}},
		{{Key: "$count", Value: "total"}},
	}
	return r.aggregateTotal(ctx, pipeline)
}

// CountLikesByUser counts resources the user has liked.
func (r *ResourceRepository) CountLikesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true, "likes": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count liked resources: %v", err)
	}
	return count, nil
}

// CategoryCount is one bucket of a grouped resource count.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// CountByCategory groups active resources per category.
func (r *ResourceRepository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %v", err)
	}
	defer cursor.Close(ctx)

	var counts []CategoryCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %v", err)
	}
	return counts, nil
}

// CourseCount is one bucket of a per-course resource count.
type CourseCount struct {
	CourseID primitive.ObjectID `bson:"_id" json:"course_id"`
	Count    int64              `bson:"count" json:"count"`
}

// CountByCourse groups active resources per course.
func (r *ResourceRepository) CountByCourse(ctx context.Context) ([]CourseCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$course_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate per-course counts: %v", err)
	}
	defer cursor.Close(ctx)

	var counts []CourseCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode per-course counts: %v", err)
	}
	return counts, nil
}

func (r *ResourceRepository) aggregateTotal(ctx context.Context, pipeline mongo.Pipeline) (int64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate resources: %v", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("failed to decode aggregate: %v", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
