package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeAchievementStore struct {
	active []models.Achievement
	err    error
}

func (f *fakeAchievementStore) CreateAchievement(ctx context.Context, a *models.Achievement) (*models.Achievement, error) {
	a.ID = primitive.NewObjectID()
	f.active = append(f.active, *a)
	return a, nil
}

func (f *fakeAchievementStore) GetAchievementByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	for i := range f.active {
		if f.active[i].ID == id {
			return &f.active[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeAchievementStore) GetActiveAchievements(ctx context.Context, achievementType string) ([]models.Achievement, error) {
	if f.err != nil {
		return nil, f.err
	}
	if achievementType == "" {
		return f.active, nil
	}
	var out []models.Achievement
	for _, a := range f.active {
		if a.Type == achievementType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAchievementStore) UpdateAchievement(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return nil
}

func (f *fakeAchievementStore) SoftDeleteAchievement(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type fakeUserAchievementStore struct {
	records   []models.UserAchievement
	insertErr map[primitive.ObjectID]error
}

func (f *fakeUserAchievementStore) InsertUserAchievement(ctx context.Context, record *models.UserAchievement) error {
	if err, ok := f.insertErr[record.AchievementID]; ok {
		return err
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeUserAchievementStore) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	var out []models.UserAchievement
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeUserAchievementStore) GetEarnedWithDetail(ctx context.Context, userID primitive.ObjectID) ([]models.EarnedAchievement, error) {
	return nil, nil
}

func (f *fakeUserAchievementStore) Leaderboard(ctx context.Context, limit int64) ([]repository.LeaderboardEntry, error) {
	return nil, nil
}

type fakeListUpdater struct {
	added []primitive.ObjectID
	err   error
}

func (f *fakeListUpdater) AddAchievement(ctx context.Context, userID, achievementID primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, achievementID)
	return nil
}

type fakeAchievementNotifier struct {
	earned []string
}

func (f *fakeAchievementNotifier) NotifyAchievementEarned(ctx context.Context, recipientID primitive.ObjectID, achievementName string, achievementID primitive.ObjectID) error {
	f.earned = append(f.earned, achievementName)
	return nil
}

func newUploadAchievement(name string, threshold int64) models.Achievement {
	return models.Achievement{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: "d",
		Type:        models.AchievementUpload,
		Rarity:      "common",
		Criteria:    models.AchievementCriteria{Count: threshold},
		IsActive:    true,
	}
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
}

func TestCheckAndAwardMultipleThresholds(t *testing.T) {
	first := newUploadAchievement("First Upload", 1)
	tenth := newUploadAchievement("Ten Uploads", 10)
	fifty := newUploadAchievement("Fifty Uploads", 50)

	achStore := &fakeAchievementStore{active: []models.Achievement{first, tenth, fifty}}
	uaStore := &fakeUserAchievementStore{}
	updater := &fakeListUpdater{}
	notifier := &fakeAchievementNotifier{}
	svc := NewAchievementService(achStore, uaStore, updater, notifier)

	userID := primitive.NewObjectID()
	svc.CheckAndAward(context.Background(), userID, models.AchievementUpload, 10)

	require.Len(t, uaStore.records, 2)
	assert.Equal(t, []string{"First Upload", "Ten Uploads"}, notifier.earned)
	assert.Len(t, updater.added, 2)

	for _, r := range uaStore.records {
		assert.Equal(t, int64(10), r.Progress)
	}
}

func TestCheckAndAwardSkipsAlreadyEarned(t *testing.T) {
	first := newUploadAchievement("First Upload", 1)
	achStore := &fakeAchievementStore{active: []models.Achievement{first}}
	uaStore := &fakeUserAchievementStore{}
	notifier := &fakeAchievementNotifier{}
	svc := NewAchievementService(achStore, uaStore, &fakeListUpdater{}, notifier)

	userID := primitive.NewObjectID()
	svc.CheckAndAward(context.Background(), userID, models.AchievementUpload, 1)
	svc.CheckAndAward(context.Background(), userID, models.AchievementUpload, 2)

	assert.Len(t, uaStore.records, 1)
	assert.Equal(t, []string{"First Upload"}, notifier.earned)
}

func TestCheckAndAwardDuplicateKeyIsBenign(t *testing.T) {
	first := newUploadAchievement("First Upload", 1)
	tenth := newUploadAchievement("Ten Uploads", 10)

	achStore := &fakeAchievementStore{active: []models.Achievement{first, tenth}}
	uaStore := &fakeUserAchievementStore{
		insertErr: map[primitive.ObjectID]error{first.ID: duplicateKeyError()},
	}
	notifier := &fakeAchievementNotifier{}
	svc := NewAchievementService(achStore, uaStore, &fakeListUpdater{}, notifier)

	// The duplicate on the first threshold must not stop the second award.
	svc.CheckAndAward(context.Background(), primitive.NewObjectID(), models.AchievementUpload, 10)

	require.Len(t, uaStore.records, 1)
	assert.Equal(t, []string{"Ten Uploads"}, notifier.earned)
}

func TestCheckAndAwardBelowThreshold(t *testing.T) {
	tenth := newUploadAchievement("Ten Uploads", 10)
	achStore := &fakeAchievementStore{active: []models.Achievement{tenth}}
	uaStore := &fakeUserAchievementStore{}
	svc := NewAchievementService(achStore, uaStore, &fakeListUpdater{}, &fakeAchievementNotifier{})

	svc.CheckAndAward(context.Background(), primitive.NewObjectID(), models.AchievementUpload, 9)

	assert.Empty(t, uaStore.records)
}

func TestCheckAndAwardFetchFailureIsSwallowed(t *testing.T) {
	achStore := &fakeAchievementStore{err: errors.New("db down")}
	uaStore := &fakeUserAchievementStore{}
	svc := NewAchievementService(achStore, uaStore, &fakeListUpdater{}, &fakeAchievementNotifier{})

	assert.NotPanics(t, func() {
		svc.CheckAndAward(context.Background(), primitive.NewObjectID(), models.AchievementUpload, 5)
	})
	assert.Empty(t, uaStore.records)
}

func TestCreateAchievementValidation(t *testing.T) {
	svc := NewAchievementService(&fakeAchievementStore{}, &fakeUserAchievementStore{}, &fakeListUpdater{}, &fakeAchievementNotifier{})

	_, err := svc.CreateAchievement(context.Background(), &models.Achievement{
		Name: "No Description", Type: models.AchievementUpload, Rarity: "common",
		Criteria: models.AchievementCriteria{Count: 1},
	})
	assert.Error(t, err)

	_, err = svc.CreateAchievement(context.Background(), &models.Achievement{
		Name: "Bad Type", Description: "d", Type: "bogus", Rarity: "common",
		Criteria: models.AchievementCriteria{Count: 1},
	})
	assert.Error(t, err)
}
