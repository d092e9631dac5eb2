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

// ResourceRequestRepository handles database operations related to resource requests.
type ResourceRequestRepository struct {
	collection *mongo.Collection
}

// NewResourceRequestRepository creates a new instance of ResourceRequestRepository.
func NewResourceRequestRepository(db *mongo.Database) *ResourceRequestRepository {
	return &ResourceRequestRepository{
		collection: db.Collection("resource_requests"),
	}
}

// CreateRequest inserts a new resource request.
func (r *ResourceRequestRepository) CreateRequest(ctx context.Context, request *models.ResourceRequest) (*models.ResourceRequest, error) {
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	request.IsActive = true

	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert resource request")
		return nil, fmt.Errorf("failed to insert resource request: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	request.ID = insertedID

	logrus.WithField("requestID", request.ID.Hex()).Info("Resource request created successfully")
	return request, nil
}

// GetRequestByID fetches an active request by its ID.
func (r *ResourceRequestRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.ResourceRequest, error) {
	var request models.ResourceRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&request)
	if err != nil {
		return nil, fmt.Errorf("failed to find resource request: %v", err)
	}
	return &request, nil
}

// GetRequests fetches a page of active requests with optional filters.
func (r *ResourceRequestRepository) GetRequests(ctx context.Context, status, priority string, page, limit int64) ([]models.ResourceRequest, int64, error) {
	filter := bson.M{"is_active": true}
	if status != "" {
		filter["status"] = status
	}
	if priority != "" {
		filter["priority"] = priority
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count resource requests: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch resource requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ResourceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, fmt.Errorf("failed to decode resource requests: %v", err)
	}
	return requests, total, nil
}

// UpdateRequest applies field updates to a request document.
func (r *ResourceRequestRepository) UpdateRequest(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithError(err).WithField("requestID", id.Hex()).Error("Failed to update resource request")
		return fmt.Errorf("failed to update resource request: %v", err)
	}
	return nil
}

// SoftDeleteRequest marks a request inactive.
func (r *ResourceRequestRepository) SoftDeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateRequest(ctx, id, bson.M{"is_active": false})
}

// CountRequests counts all active requests.
func (r *ResourceRequestRepository) CountRequests(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count resource requests: %v", err)
	}
	return count, nil
}

// CountFulfilledBy counts requests the user has fulfilled.
func (r *ResourceRequestRepository) CountFulfilledBy(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true, "fulfilled_by": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count fulfilled requests: %v", err)
	}
	return count, nil
}

// GetOpenRequestsWithDeadlineBefore returns open requests whose deadline
// falls between now and the cutoff. Used by the reminder job.
func (r *ResourceRequestRepository) GetOpenRequestsWithDeadlineBefore(ctx context.Context, cutoff time.Time) ([]models.ResourceRequest, error) {
	filter := bson.M{
		"is_active": true,
		"status":    bson.M{"$in": bson.A{models.RequestStatusOpen, models.RequestStatusInProgress}},
		"deadline":  bson.M{"$gt": time.Now(), "$lte": cutoff},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ResourceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode due requests: %v", err)
	}
	return requests, nil
}
