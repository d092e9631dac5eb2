package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"github.com/campusshare/backend/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeResourceStore struct {
	resources map[primitive.ObjectID]*models.Resource
	downloads int64
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{resources: make(map[primitive.ObjectID]*models.Resource)}
}

func (f *fakeResourceStore) CreateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	resource.ID = primitive.NewObjectID()
	resource.IsActive = true
	f.resources[resource.ID] = resource
	return resource, nil
}

func (f *fakeResourceStore) GetResourceByID(ctx context.Context, id primitive.ObjectID) (*models.Resource, error) {
	resource, ok := f.resources[id]
	if !ok || !resource.IsActive {
		return nil, mongo.ErrNoDocuments
	}
	copied := *resource
	return &copied, nil
}

func (f *fakeResourceStore) GetResources(ctx context.Context, filter repository.ResourceFilter, page, limit int64) ([]models.Resource, int64, error) {
	return nil, 0, nil
}

func (f *fakeResourceStore) GetRecentResources(ctx context.Context, limit int64) ([]models.Resource, error) {
	return nil, nil
}

func (f *fakeResourceStore) GetPinnedResources(ctx context.Context) ([]models.Resource, error) {
	return nil, nil
}

func (f *fakeResourceStore) UpdateResource(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	resource, ok := f.resources[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if likes, ok := update["likes"].([]primitive.ObjectID); ok {
		resource.Likes = likes
	}
	if comments, ok := update["comments"].([]models.Comment); ok {
		resource.Comments = comments
	}
	if approved, ok := update["is_approved"].(bool); ok {
		resource.IsApproved = approved
	}
	if pinned, ok := update["is_pinned"].(bool); ok {
		resource.IsPinned = pinned
	}
	if title, ok := update["title"].(string); ok {
		resource.Title = title
	}
	return nil
}

func (f *fakeResourceStore) SoftDeleteResource(ctx context.Context, id primitive.ObjectID) error {
	resource, ok := f.resources[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	resource.IsActive = false
	return nil
}

func (f *fakeResourceStore) IncrementDownloads(ctx context.Context, id primitive.ObjectID) (int64, error) {
	resource, ok := f.resources[id]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	resource.Downloads++
	f.downloads++
	return resource.Downloads, nil
}

func (f *fakeResourceStore) CountByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.resources {
		if r.IsActive && r.UploaderID == uploaderID {
			n++
		}
	}
	return n, nil
}

func (f *fakeResourceStore) SumLikesByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.resources {
		if r.IsActive && r.UploaderID == uploaderID {
			n += int64(len(r.Likes))
		}
	}
	return n, nil
}

func (f *fakeResourceStore) SumDownloadsByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.resources {
		if r.IsActive && r.UploaderID == uploaderID {
			n += r.Downloads
		}
	}
	return n, nil
}

func (f *fakeResourceStore) CountCommentsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.resources {
		for _, c := range r.Comments {
			if c.UserID == userID {
				n++
			}
		}
	}
	return n, nil
}

type fakeResourceUserStore struct {
	contributions map[primitive.ObjectID]int64
	enrolled      []models.User
}

func (f *fakeResourceUserStore) IncrementContributionCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	if f.contributions == nil {
		f.contributions = make(map[primitive.ObjectID]int64)
	}
	f.contributions[userID] += delta
	return nil
}

func (f *fakeResourceUserStore) GetUsersEnrolledInCourse(ctx context.Context, courseID primitive.ObjectID, limit int64) ([]models.User, error) {
	return f.enrolled, nil
}

type fakeResourceNotifier struct {
	newResource []primitive.ObjectID
	approved    []primitive.ObjectID
	liked       []primitive.ObjectID
	commented   []primitive.ObjectID
}

func (f *fakeResourceNotifier) NotifyNewResource(ctx context.Context, recipientID, senderID primitive.ObjectID, uploaderName, resourceTitle string, resourceID primitive.ObjectID) error {
	f.newResource = append(f.newResource, recipientID)
	return nil
}

func (f *fakeResourceNotifier) NotifyResourceApproved(ctx context.Context, recipientID primitive.ObjectID, resourceTitle string, resourceID primitive.ObjectID) error {
	f.approved = append(f.approved, recipientID)
	return nil
}

func (f *fakeResourceNotifier) NotifyResourceLiked(ctx context.Context, recipientID, senderID primitive.ObjectID, likerName, resourceTitle string, resourceID primitive.ObjectID) error {
	f.liked = append(f.liked, recipientID)
	return nil
}

func (f *fakeResourceNotifier) NotifyResourceCommented(ctx context.Context, recipientID, senderID primitive.ObjectID, commenterName, resourceTitle string, resourceID primitive.ObjectID) error {
	f.commented = append(f.commented, recipientID)
	return nil
}

type fakeMedia struct {
	uploads   int
	destroyed []string
}

func (f *fakeMedia) Upload(ctx context.Context, file io.Reader, folder string) (*media.UploadResult, error) {
	f.uploads++
	return &media.UploadResult{
		URL:      "https://cdn.example.com/" + folder + "/file.pdf",
		PublicID: folder + "/file",
	}, nil
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type resourceFixture struct {
	svc      *ResourceService
	store    *fakeResourceStore
	users    *fakeResourceUserStore
	notifier *fakeResourceNotifier
	awarder  *fakeAwarder
	media    *fakeMedia
	courseID primitive.ObjectID
}

func newResourceFixture() *resourceFixture {
	courseID := primitive.NewObjectID()
	store := newFakeResourceStore()
	users := &fakeResourceUserStore{}
	notifier := &fakeResourceNotifier{}
	aw := &fakeAwarder{}
	med := &fakeMedia{}
	courses := &fakeCourseLookup{courses: map[primitive.ObjectID]bool{courseID: true}}
	return &resourceFixture{
		svc:      NewResourceService(store, users, courses, notifier, aw, med),
		store:    store,
		users:    users,
		notifier: notifier,
		awarder:  aw,
		media:    med,
		courseID: courseID,
	}
}

func (fx *resourceFixture) seedResource(t *testing.T, uploaderID primitive.ObjectID) *models.Resource {
	t.Helper()
	resource, err := fx.svc.CreateResource(context.Background(), UploadInput{
		Title:    "Week 3 lecture notes",
		CourseID: fx.courseID.Hex(),
		Category: "lecture_notes",
		File:     strings.NewReader("pdf bytes"),
		FileName: "notes.pdf",
		FileSize: 9,
		FileType: "application/pdf",
	}, uploaderID, "uploader")
	require.NoError(t, err)
	return resource
}

func TestCreateResourceSideEffects(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()
	enrolled := primitive.NewObjectID()
	fx.users.enrolled = []models.User{
		{ID: uploaderID},
		{ID: enrolled},
	}

	resource := fx.seedResource(t, uploaderID)

	assert.Equal(t, 1, fx.media.uploads)
	assert.NotEmpty(t, resource.FileURL)
	assert.Equal(t, int64(1), fx.users.contributions[uploaderID])
	assert.Contains(t, fx.awarder.calls, models.AchievementUpload)
	// Fan-out skips the uploader.
	assert.Equal(t, []primitive.ObjectID{enrolled}, fx.notifier.newResource)
}

func TestCreateResourceValidation(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()

	_, err := fx.svc.CreateResource(context.Background(), UploadInput{
		Title:    "  ",
		CourseID: fx.courseID.Hex(),
		Category: "lecture_notes",
		File:     strings.NewReader("x"),
	}, uploaderID, "uploader")
	assert.True(t, apperrors.IsBadRequest(err))

	_, err = fx.svc.CreateResource(context.Background(), UploadInput{
		Title:    "Bad category",
		CourseID: fx.courseID.Hex(),
		Category: "memes",
		File:     strings.NewReader("x"),
	}, uploaderID, "uploader")
	assert.True(t, apperrors.IsBadRequest(err))

	_, err = fx.svc.CreateResource(context.Background(), UploadInput{
		Title:    "Unknown course",
		CourseID: primitive.NewObjectID().Hex(),
		Category: "lecture_notes",
		File:     strings.NewReader("x"),
	}, uploaderID, "uploader")
	assert.True(t, apperrors.IsNotFound(err))

	assert.Zero(t, fx.media.uploads)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()
	liker := primitive.NewObjectID()
	resource := fx.seedResource(t, uploaderID)

	liked, count, err := fx.svc.ToggleLike(context.Background(), resource.ID.Hex(), liker, "alice")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)
	assert.Equal(t, []primitive.ObjectID{uploaderID}, fx.notifier.liked)
	assert.Contains(t, fx.awarder.calls, models.AchievementLike)

	// Unlike restores the original state and stays silent.
	liked, count, err = fx.svc.ToggleLike(context.Background(), resource.ID.Hex(), liker, "alice")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
	assert.Len(t, fx.notifier.liked, 1)
}

func TestToggleLikeOwnResourceIsSilent(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()
	resource := fx.seedResource(t, uploaderID)

	liked, count, err := fx.svc.ToggleLike(context.Background(), resource.ID.Hex(), uploaderID, "uploader")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)
	assert.Empty(t, fx.notifier.liked)
}

func TestAddCommentNotifiesUploader(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	resource := fx.seedResource(t, uploaderID)

	commentedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return commentedAt }
	defer func() { timeNow = time.Now }()

	got, err := fx.svc.AddComment(context.Background(), resource.ID.Hex(), commenter, "alice", "super useful")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, commentedAt, got.Comments[0].CreatedAt)
	assert.Equal(t, []primitive.ObjectID{uploaderID}, fx.notifier.commented)
	assert.Contains(t, fx.awarder.calls, models.AchievementComment)

	// Uploader commenting on their own resource stays silent.
	_, err = fx.svc.AddComment(context.Background(), resource.ID.Hex(), uploaderID, "uploader", "thanks")
	require.NoError(t, err)
	assert.Len(t, fx.notifier.commented, 1)
}

func TestDownloadBumpsCounter(t *testing.T) {
	fx := newResourceFixture()
	resource := fx.seedResource(t, primitive.NewObjectID())

	url, err := fx.svc.Download(context.Background(), resource.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, resource.FileURL, url)
	assert.Equal(t, int64(1), fx.store.downloads)
	assert.Contains(t, fx.awarder.calls, models.AchievementDownload)
}

func TestDeleteResourceOwnership(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()
	resource := fx.seedResource(t, uploaderID)

	err := fx.svc.DeleteResource(context.Background(), resource.ID.Hex(), primitive.NewObjectID(), "student")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, fx.svc.DeleteResource(context.Background(), resource.ID.Hex(), uploaderID, "student"))
	assert.Equal(t, []string{resource.FilePublicID}, fx.media.destroyed)

	_, err = fx.svc.GetResource(context.Background(), resource.ID.Hex())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestApproveResource(t *testing.T) {
	fx := newResourceFixture()
	uploaderID := primitive.NewObjectID()
	resource := fx.seedResource(t, uploaderID)

	_, err := fx.svc.Approve(context.Background(), resource.ID.Hex(), "student")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	approved, err := fx.svc.Approve(context.Background(), resource.ID.Hex(), "admin")
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, []primitive.ObjectID{uploaderID}, fx.notifier.approved)

	_, err = fx.svc.Approve(context.Background(), resource.ID.Hex(), "admin")
	assert.True(t, apperrors.IsBadRequest(err))
}
