package services

import (
	"context"
	"testing"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRequestStore struct {
	requests map[primitive.ObjectID]*models.ResourceRequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[primitive.ObjectID]*models.ResourceRequest)}
}

func (f *fakeRequestStore) CreateRequest(ctx context.Context, request *models.ResourceRequest) (*models.ResourceRequest, error) {
	request.ID = primitive.NewObjectID()
	request.IsActive = true
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeRequestStore) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.ResourceRequest, error) {
	request, ok := f.requests[id]
	if !ok || !request.IsActive {
		return nil, mongo.ErrNoDocuments
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestStore) GetRequests(ctx context.Context, status, priority string, page, limit int64) ([]models.ResourceRequest, int64, error) {
	return nil, 0, nil
}

func (f *fakeRequestStore) UpdateRequest(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	request, ok := f.requests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if status, ok := update["status"].(string); ok {
		request.Status = status
	}
	if upvotes, ok := update["upvotes"].([]primitive.ObjectID); ok {
		request.Upvotes = upvotes
	}
	if comments, ok := update["comments"].([]models.Comment); ok {
		request.Comments = comments
	}
	if by, ok := update["fulfilled_by"].(primitive.ObjectID); ok {
		request.FulfilledBy = &by
	}
	if res, ok := update["fulfilled_resource"].(primitive.ObjectID); ok {
		request.FulfilledResource = &res
	}
	return nil
}

func (f *fakeRequestStore) SoftDeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	request, ok := f.requests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	request.IsActive = false
	return nil
}

func (f *fakeRequestStore) CountFulfilledBy(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.requests {
		if r.FulfilledBy != nil && *r.FulfilledBy == userID {
			n++
		}
	}
	return n, nil
}

type fakeResourceLookup struct {
	resources map[primitive.ObjectID]bool
}

func (f *fakeResourceLookup) GetResourceByID(ctx context.Context, id primitive.ObjectID) (*models.Resource, error) {
	if !f.resources[id] {
		return nil, mongo.ErrNoDocuments
	}
	return &models.Resource{ID: id, Title: "Lecture notes"}, nil
}

type fakeRequestNotifier struct {
	fulfilled []primitive.ObjectID
	commented []primitive.ObjectID
}

func (f *fakeRequestNotifier) NotifyRequestFulfilled(ctx context.Context, recipientID, senderID primitive.ObjectID, fulfillerName, requestTitle string, requestID primitive.ObjectID) error {
	f.fulfilled = append(f.fulfilled, recipientID)
	return nil
}

func (f *fakeRequestNotifier) NotifyRequestCommented(ctx context.Context, recipientID, senderID primitive.ObjectID, commenterName, requestTitle string, requestID primitive.ObjectID) error {
	f.commented = append(f.commented, recipientID)
	return nil
}

type requestFixture struct {
	svc       *ResourceRequestService
	store     *fakeRequestStore
	notifier  *fakeRequestNotifier
	awarder   *fakeAwarder
	courseID  primitive.ObjectID
	resources *fakeResourceLookup
}

func newRequestFixture() *requestFixture {
	courseID := primitive.NewObjectID()
	store := newFakeRequestStore()
	notifier := &fakeRequestNotifier{}
	aw := &fakeAwarder{}
	resources := &fakeResourceLookup{resources: make(map[primitive.ObjectID]bool)}
	courses := &fakeCourseLookup{courses: map[primitive.ObjectID]bool{courseID: true}}
	return &requestFixture{
		svc:       NewResourceRequestService(store, resources, courses, notifier, aw),
		store:     store,
		notifier:  notifier,
		awarder:   aw,
		courseID:  courseID,
		resources: resources,
	}
}

func (fx *requestFixture) seedRequest(t *testing.T, requesterID primitive.ObjectID) *models.ResourceRequest {
	t.Helper()
	request, err := fx.svc.CreateRequest(context.Background(), &models.ResourceRequest{
		Title:    "Past exam papers",
		CourseID: fx.courseID,
	}, requesterID)
	require.NoError(t, err)
	return request
}

func (fx *requestFixture) seedResource() primitive.ObjectID {
	id := primitive.NewObjectID()
	fx.resources.resources[id] = true
	return id
}

func TestCreateRequestDefaults(t *testing.T) {
	fx := newRequestFixture()
	request := fx.seedRequest(t, primitive.NewObjectID())

	assert.Equal(t, models.RequestStatusOpen, request.Status)
	assert.Equal(t, models.PriorityMedium, request.Priority)
}

func TestCreateRequestRejectsPastDeadline(t *testing.T) {
	fx := newRequestFixture()
	_, err := fx.svc.CreateRequest(context.Background(), &models.ResourceRequest{
		Title:    "Too late",
		CourseID: fx.courseID,
		Deadline: time.Now().Add(-time.Hour),
	}, primitive.NewObjectID())
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestFulfillRequest(t *testing.T) {
	fx := newRequestFixture()
	requesterID := primitive.NewObjectID()
	fulfillerID := primitive.NewObjectID()
	request := fx.seedRequest(t, requesterID)
	resourceID := fx.seedResource()

	fulfilled, err := fx.svc.FulfillRequest(context.Background(), request.ID.Hex(), fulfillerID, "alice", resourceID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusFulfilled, fulfilled.Status)
	require.NotNil(t, fulfilled.FulfilledBy)
	assert.Equal(t, fulfillerID, *fulfilled.FulfilledBy)
	require.NotNil(t, fulfilled.FulfilledResource)
	assert.Equal(t, resourceID, *fulfilled.FulfilledResource)
	assert.Equal(t, []primitive.ObjectID{requesterID}, fx.notifier.fulfilled)
	assert.Contains(t, fx.awarder.calls, models.AchievementRequest)
}

func TestFulfillRequestAlreadyFulfilled(t *testing.T) {
	fx := newRequestFixture()
	request := fx.seedRequest(t, primitive.NewObjectID())
	resourceID := fx.seedResource()

	_, err := fx.svc.FulfillRequest(context.Background(), request.ID.Hex(), primitive.NewObjectID(), "alice", resourceID.Hex())
	require.NoError(t, err)

	before := len(fx.notifier.fulfilled)
	_, err = fx.svc.FulfillRequest(context.Background(), request.ID.Hex(), primitive.NewObjectID(), "bob", resourceID.Hex())
	assert.True(t, apperrors.IsBadRequest(err))
	assert.Len(t, fx.notifier.fulfilled, before)
}

func TestFulfillRequestNeedsExistingResource(t *testing.T) {
	fx := newRequestFixture()
	request := fx.seedRequest(t, primitive.NewObjectID())

	_, err := fx.svc.FulfillRequest(context.Background(), request.ID.Hex(), primitive.NewObjectID(), "alice", "")
	assert.True(t, apperrors.IsBadRequest(err))

	_, err = fx.svc.FulfillRequest(context.Background(), request.ID.Hex(), primitive.NewObjectID(), "alice", primitive.NewObjectID().Hex())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateStatusTransitions(t *testing.T) {
	fx := newRequestFixture()
	requesterID := primitive.NewObjectID()
	request := fx.seedRequest(t, requesterID)

	// Fulfillment is not reachable through the status endpoint.
	_, err := fx.svc.UpdateStatus(context.Background(), request.ID.Hex(), requesterID, "student", models.RequestStatusFulfilled)
	assert.True(t, apperrors.IsBadRequest(err))

	// Only the requester or an admin may move the machine.
	_, err = fx.svc.UpdateStatus(context.Background(), request.ID.Hex(), primitive.NewObjectID(), "student", models.RequestStatusInProgress)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	got, err := fx.svc.UpdateStatus(context.Background(), request.ID.Hex(), requesterID, "student", models.RequestStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, got.Status)

	got, err = fx.svc.UpdateStatus(context.Background(), request.ID.Hex(), requesterID, "student", models.RequestStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusClosed, got.Status)

	// Closed is terminal.
	_, err = fx.svc.UpdateStatus(context.Background(), request.ID.Hex(), requesterID, "student", models.RequestStatusOpen)
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestToggleUpvoteRoundTrip(t *testing.T) {
	fx := newRequestFixture()
	request := fx.seedRequest(t, primitive.NewObjectID())
	voter := primitive.NewObjectID()

	upvoted, count, err := fx.svc.ToggleUpvote(context.Background(), request.ID.Hex(), voter)
	require.NoError(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 1, count)

	upvoted, count, err = fx.svc.ToggleUpvote(context.Background(), request.ID.Hex(), voter)
	require.NoError(t, err)
	assert.False(t, upvoted)
	assert.Equal(t, 0, count)
}

func TestRequestAddCommentNotifiesRequesterOnly(t *testing.T) {
	fx := newRequestFixture()
	requesterID := primitive.NewObjectID()
	request := fx.seedRequest(t, requesterID)

	// The requester commenting on their own request stays silent.
	_, err := fx.svc.AddComment(context.Background(), request.ID.Hex(), requesterID, "me", "any updates?")
	require.NoError(t, err)
	assert.Empty(t, fx.notifier.commented)

	got, err := fx.svc.AddComment(context.Background(), request.ID.Hex(), primitive.NewObjectID(), "alice", "found one")
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{requesterID}, fx.notifier.commented)
	require.Len(t, got.Comments, 2)
	assert.False(t, got.Comments[1].CreatedAt.IsZero())
}
