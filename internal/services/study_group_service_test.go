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

type fakeGroupStore struct {
	groups map[primitive.ObjectID]*models.StudyGroup
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{groups: make(map[primitive.ObjectID]*models.StudyGroup)}
}

func (f *fakeGroupStore) CreateStudyGroup(ctx context.Context, group *models.StudyGroup) (*models.StudyGroup, error) {
	group.ID = primitive.NewObjectID()
	group.IsActive = true
	f.groups[group.ID] = group
	return group, nil
}

func (f *fakeGroupStore) GetStudyGroupByID(ctx context.Context, id primitive.ObjectID) (*models.StudyGroup, error) {
	group, ok := f.groups[id]
	if !ok || !group.IsActive {
		return nil, mongo.ErrNoDocuments
	}
	copied := *group
	return &copied, nil
}

func (f *fakeGroupStore) GetStudyGroups(ctx context.Context, courseID *primitive.ObjectID, page, limit int64) ([]models.StudyGroup, int64, error) {
	return nil, 0, nil
}

func (f *fakeGroupStore) SearchStudyGroups(ctx context.Context, query string, limit int64) ([]models.StudyGroup, error) {
	return nil, nil
}

func (f *fakeGroupStore) GetStudyGroupsByMember(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.StudyGroup, error) {
	return nil, nil
}

func (f *fakeGroupStore) UpdateStudyGroup(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	group, ok := f.groups[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if members, ok := update["members"].([]models.GroupMember); ok {
		group.Members = members
	}
	if status, ok := update["status"].(string); ok {
		group.Status = status
	}
	if active, ok := update["is_active"].(bool); ok {
		group.IsActive = active
	}
	if creator, ok := update["creator_id"].(primitive.ObjectID); ok {
		group.CreatorID = creator
	}
	return nil
}

func (f *fakeGroupStore) SoftDeleteStudyGroup(ctx context.Context, id primitive.ObjectID) error {
	group, ok := f.groups[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	group.IsActive = false
	return nil
}

func (f *fakeGroupStore) CountByMember(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, g := range f.groups {
		if g.IsActive && g.HasMember(userID) {
			n++
		}
	}
	return n, nil
}

type fakeCourseLookup struct {
	courses map[primitive.ObjectID]bool
}

func (f *fakeCourseLookup) GetCourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	if !f.courses[id] {
		return nil, mongo.ErrNoDocuments
	}
	return &models.Course{ID: id, Code: "CS101", Name: "Intro"}, nil
}

type fakeGroupNotifier struct {
	joins []primitive.ObjectID // recipients
}

func (f *fakeGroupNotifier) NotifyStudyGroupJoined(ctx context.Context, recipientID, senderID primitive.ObjectID, joinerName, groupName string, groupID primitive.ObjectID) error {
	f.joins = append(f.joins, recipientID)
	return nil
}

type fakeAwarder struct {
	calls []string
}

func (f *fakeAwarder) CheckAndAward(ctx context.Context, userID primitive.ObjectID, achievementType string, count int64) {
	f.calls = append(f.calls, achievementType)
}

func newGroupService(store *fakeGroupStore, courseID primitive.ObjectID) (*StudyGroupService, *fakeGroupNotifier, *fakeAwarder) {
	notifier := &fakeGroupNotifier{}
	aw := &fakeAwarder{}
	courses := &fakeCourseLookup{courses: map[primitive.ObjectID]bool{courseID: true}}
	return NewStudyGroupService(store, courses, notifier, aw), notifier, aw
}

func seedGroup(t *testing.T, svc *StudyGroupService, courseID, creatorID primitive.ObjectID, maxMembers int) *models.StudyGroup {
	t.Helper()
	group, err := svc.CreateStudyGroup(context.Background(), &models.StudyGroup{
		Name:       "Algorithms crew",
		CourseID:   courseID,
		MaxMembers: maxMembers,
	}, creatorID)
	require.NoError(t, err)
	return group
}

func TestCreateStudyGroupCreatorIsFirstMember(t *testing.T) {
	courseID := primitive.NewObjectID()
	creatorID := primitive.NewObjectID()
	svc, _, _ := newGroupService(newFakeGroupStore(), courseID)

	group := seedGroup(t, svc, courseID, creatorID, 3)

	require.Len(t, group.Members, 1)
	assert.Equal(t, creatorID, group.Members[0].UserID)
	assert.Equal(t, creatorID, group.CreatorID)
	assert.Equal(t, models.GroupStatusOpen, group.Status)
}

func TestCreateStudyGroupRejectsTinyCap(t *testing.T) {
	courseID := primitive.NewObjectID()
	svc, _, _ := newGroupService(newFakeGroupStore(), courseID)

	_, err := svc.CreateStudyGroup(context.Background(), &models.StudyGroup{
		Name:       "Solo",
		CourseID:   courseID,
		MaxMembers: 1,
	}, primitive.NewObjectID())
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestJoinStudyGroupFillsAndRejects(t *testing.T) {
	courseID := primitive.NewObjectID()
	creatorID := primitive.NewObjectID()
	store := newFakeGroupStore()
	svc, notifier, aw := newGroupService(store, courseID)

	group := seedGroup(t, svc, courseID, creatorID, 2)

	joiner := primitive.NewObjectID()
	joined, err := svc.JoinStudyGroup(context.Background(), group.ID.Hex(), joiner, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusFull, joined.Status)
	assert.Equal(t, []primitive.ObjectID{creatorID}, notifier.joins)
	assert.Contains(t, aw.calls, models.AchievementStudyGroup)

	// Full group rejects the next joiner.
	_, err = svc.JoinStudyGroup(context.Background(), group.ID.Hex(), primitive.NewObjectID(), "bob")
	assert.True(t, apperrors.IsBadRequest(err))

	// Joining twice is rejected.
	_, err = svc.JoinStudyGroup(context.Background(), group.ID.Hex(), joiner, "alice")
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestLeaveStudyGroupReopensFullGroup(t *testing.T) {
	courseID := primitive.NewObjectID()
	creatorID := primitive.NewObjectID()
	store := newFakeGroupStore()
	svc, _, _ := newGroupService(store, courseID)

	group := seedGroup(t, svc, courseID, creatorID, 2)
	joiner := primitive.NewObjectID()
	_, err := svc.JoinStudyGroup(context.Background(), group.ID.Hex(), joiner, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveStudyGroup(context.Background(), group.ID.Hex(), joiner))

	got, err := svc.GetStudyGroup(context.Background(), group.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusOpen, got.Status)
	assert.Len(t, got.Members, 1)
}

func TestLeaveStudyGroupLastMemberCloses(t *testing.T) {
	courseID := primitive.NewObjectID()
	creatorID := primitive.NewObjectID()
	store := newFakeGroupStore()
	svc, _, _ := newGroupService(store, courseID)

	group := seedGroup(t, svc, courseID, creatorID, 3)
	require.NoError(t, svc.LeaveStudyGroup(context.Background(), group.ID.Hex(), creatorID))

	raw := store.groups[group.ID]
	assert.Equal(t, models.GroupStatusClosed, raw.Status)
	assert.False(t, raw.IsActive)
	assert.Empty(t, raw.Members)

	// Closed and inactive groups are gone from reads.
	_, err := svc.GetStudyGroup(context.Background(), group.ID.Hex())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLeaveStudyGroupCreatorTransfersToEarliestJoined(t *testing.T) {
	courseID := primitive.NewObjectID()
	creatorID := primitive.NewObjectID()
	store := newFakeGroupStore()
	svc, _, _ := newGroupService(store, courseID)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	timeNow = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}
	defer func() { timeNow = time.Now }()

	group := seedGroup(t, svc, courseID, creatorID, 4)
	second := primitive.NewObjectID()
	third := primitive.NewObjectID()
	_, err := svc.JoinStudyGroup(context.Background(), group.ID.Hex(), second, "alice")
	require.NoError(t, err)
	_, err = svc.JoinStudyGroup(context.Background(), group.ID.Hex(), third, "bob")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveStudyGroup(context.Background(), group.ID.Hex(), creatorID))

	got, err := svc.GetStudyGroup(context.Background(), group.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, second, got.CreatorID)
	assert.Len(t, got.Members, 2)
}

func TestLeaveStudyGroupNonMember(t *testing.T) {
	courseID := primitive.NewObjectID()
	store := newFakeGroupStore()
	svc, _, _ := newGroupService(store, courseID)

	group := seedGroup(t, svc, courseID, primitive.NewObjectID(), 3)
	err := svc.LeaveStudyGroup(context.Background(), group.ID.Hex(), primitive.NewObjectID())
	assert.True(t, apperrors.IsBadRequest(err))
}
