package services

import (
	"context"
	"strings"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type requestStore interface {
	CreateRequest(ctx context.Context, request *models.ResourceRequest) (*models.ResourceRequest, error)
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.ResourceRequest, error)
	GetRequests(ctx context.Context, status, priority string, page, limit int64) ([]models.ResourceRequest, int64, error)
	UpdateRequest(ctx context.Context, id primitive.ObjectID, update bson.M) error
	SoftDeleteRequest(ctx context.Context, id primitive.ObjectID) error
	CountFulfilledBy(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type requestResourceLookup interface {
	GetResourceByID(ctx context.Context, id primitive.ObjectID) (*models.Resource, error)
}

type requestNotifier interface {
	NotifyRequestFulfilled(ctx context.Context, recipientID, senderID primitive.ObjectID, fulfillerName, requestTitle string, requestID primitive.ObjectID) error
	NotifyRequestCommented(ctx context.Context, recipientID, senderID primitive.ObjectID, commenterName, requestTitle string, requestID primitive.ObjectID) error
}

// ResourceRequestService encapsulates the business logic for resource requests.
type ResourceRequestService struct {
	repo      requestStore
	resources requestResourceLookup
	courses   courseLookup
	notifier  requestNotifier
	awarder   awarder
}

// NewResourceRequestService creates a new instance of ResourceRequestService.
func NewResourceRequestService(repo requestStore, resources requestResourceLookup, courses courseLookup, notifier requestNotifier, aw awarder) *ResourceRequestService {
	return &ResourceRequestService{
		repo:      repo,
		resources: resources,
		courses:   courses,
		notifier:  notifier,
		awarder:   aw,
	}
}

// ListRequests fetches a page of requests with optional status/priority filters.
func (s *ResourceRequestService) ListRequests(ctx context.Context, status, priority string, page, limit int64) ([]models.ResourceRequest, int64, error) {
	return s.repo.GetRequests(ctx, status, priority, page, limit)
}

// GetRequest fetches one active request.
func (s *ResourceRequestService) GetRequest(ctx context.Context, id string) (*models.ResourceRequest, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid request ID")
	}
	request, err := s.repo.GetRequestByID(ctx, objID)
	if err != nil {
		return nil, apperrors.NotFound("resource request not found")
	}
	return request, nil
}

// CreateRequest validates and stores a new request in the open state.
func (s *ResourceRequestService) CreateRequest(ctx context.Context, request *models.ResourceRequest, requesterID primitive.ObjectID) (*models.ResourceRequest, error) {
	if strings.TrimSpace(request.Title) == "" {
		return nil, apperrors.BadRequest("title is required")
	}
	if request.Priority == "" {
		request.Priority = models.PriorityMedium
	}
	if !models.AllowedPriorities[request.Priority] {
		return nil, apperrors.BadRequest("invalid priority %q", request.Priority)
	}
	if !request.Deadline.IsZero() && request.Deadline.Before(time.Now()) {
		return nil, apperrors.BadRequest("deadline cannot be in the past")
	}
	if _, err := s.courses.GetCourseByID(ctx, request.CourseID); err != nil {
		return nil, apperrors.NotFound("course not found")
	}

	request.RequesterID = requesterID
	request.Status = models.RequestStatusOpen

	return s.repo.CreateRequest(ctx, request)
}

// UpdateRequest applies requester/admin edits to an unfulfilled request.
func (s *ResourceRequestService) UpdateRequest(ctx context.Context, id string, actorID primitive.ObjectID, actorRole string, update bson.M) (*models.ResourceRequest, error) {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID && actorRole != "admin" {
		return nil, apperrors.Forbidden("only the requester or an admin can update this request")
	}
	if request.Status == models.RequestStatusFulfilled {
		return nil, apperrors.BadRequest("fulfilled requests cannot be edited")
	}
	if priority, ok := update["priority"].(string); ok && !models.AllowedPriorities[priority] {
		return nil, apperrors.BadRequest("invalid priority %q", priority)
	}

	if err := s.repo.UpdateRequest(ctx, request.ID, update); err != nil {
		return nil, err
	}
	return s.repo.GetRequestByID(ctx, request.ID)
}

// DeleteRequest soft-deletes a request.
func (s *ResourceRequestService) DeleteRequest(ctx context.Context, id string, actorID primitive.ObjectID, actorRole string) error {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if request.RequesterID != actorID && actorRole != "admin" {
		return apperrors.Forbidden("only the requester or an admin can delete this request")
	}
	return s.repo.SoftDeleteRequest(ctx, request.ID)
}

// AddComment appends a comment and notifies the requester unless the actor
// is the requester.
func (s *ResourceRequestService) AddComment(ctx context.Context, id string, actorID primitive.ObjectID, actorName, text string) (*models.ResourceRequest, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.BadRequest("comment text is required")
	}

	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	comments := append(request.Comments, models.Comment{
		UserID:    actorID,
		Username:  actorName,
		Text:      text,
		CreatedAt: timeNow(),
	})
	if err := s.repo.UpdateRequest(ctx, request.ID, bson.M{"comments": comments}); err != nil {
		return nil, err
	}

	if request.RequesterID != actorID {
		if err := s.notifier.NotifyRequestCommented(ctx, request.RequesterID, actorID, actorName, request.Title, request.ID); err != nil {
			logrus.WithError(err).Warn("Failed to send request comment notification")
		}
	}

	return s.repo.GetRequestByID(ctx, request.ID)
}

// ToggleUpvote adds or removes the actor's upvote and reports the branch
// taken plus the new count.
func (s *ResourceRequestService) ToggleUpvote(ctx context.Context, id string, actorID primitive.ObjectID) (upvoted bool, count int, err error) {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return false, 0, err
	}

	upvotes := request.Upvotes
	found := -1
	for i, userID := range upvotes {
		if userID == actorID {
			found = i
			break
		}
	}
	if found >= 0 {
		upvotes = append(upvotes[:found], upvotes[found+1:]...)
	} else {
		upvotes = append(upvotes, actorID)
	}

	if err := s.repo.UpdateRequest(ctx, request.ID, bson.M{"upvotes": upvotes}); err != nil {
		return false, 0, err
	}
	return found < 0, len(upvotes), nil
}

// FulfillRequest moves a request to fulfilled. Requires a concrete existing
// resource; rejected when the request is already fulfilled or closed.
// Notifies the requester and runs the fulfiller's achievement check.
func (s *ResourceRequestService) FulfillRequest(ctx context.Context, id string, actorID primitive.ObjectID, actorName, resourceID string) (*models.ResourceRequest, error) {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status == models.RequestStatusFulfilled {
		return nil, apperrors.BadRequest("request is already fulfilled")
	}
	if !request.CanTransitionTo(models.RequestStatusFulfilled) {
		return nil, apperrors.BadRequest("request cannot be fulfilled from status %q", request.Status)
	}
	if resourceID == "" {
		return nil, apperrors.BadRequest("resource ID is required to fulfill a request")
	}
	resObjID, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid resource ID")
	}
	if _, err := s.resources.GetResourceByID(ctx, resObjID); err != nil {
		return nil, apperrors.NotFound("fulfilling resource not found")
	}

	update := bson.M{
		"status":             models.RequestStatusFulfilled,
		"fulfilled_by":       actorID,
		"fulfilled_resource": resObjID,
	}
	if err := s.repo.UpdateRequest(ctx, request.ID, update); err != nil {
		return nil, err
	}

	if request.RequesterID != actorID {
		if err := s.notifier.NotifyRequestFulfilled(ctx, request.RequesterID, actorID, actorName, request.Title, request.ID); err != nil {
			logrus.WithError(err).Warn("Failed to send fulfillment notification")
		}
	}
	if count, err := s.repo.CountFulfilledBy(ctx, actorID); err == nil {
		s.awarder.CheckAndAward(ctx, actorID, models.AchievementRequest, count)
	} else {
		logrus.WithError(err).Warn("Failed to count fulfillments for achievement check")
	}

	return s.repo.GetRequestByID(ctx, request.ID)
}

// UpdateStatus moves a request along the open → in-progress → fulfilled /
// closed machine. Fulfillment must go through FulfillRequest.
func (s *ResourceRequestService) UpdateStatus(ctx context.Context, id string, actorID primitive.ObjectID, actorRole, status string) (*models.ResourceRequest, error) {
	if status == models.RequestStatusFulfilled {
		return nil, apperrors.BadRequest("use the fulfill endpoint to fulfill a request")
	}

	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID && actorRole != "admin" {
		return nil, apperrors.Forbidden("only the requester or an admin can change the status")
	}
	if !request.CanTransitionTo(status) {
		return nil, apperrors.BadRequest("cannot transition from %q to %q", request.Status, status)
	}

	if err := s.repo.UpdateRequest(ctx, request.ID, bson.M{"status": status}); err != nil {
		return nil, err
	}
	return s.repo.GetRequestByID(ctx, request.ID)
}
