package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

// fixedClock pins the tracker's calendar for deterministic tests.
type fixedClock struct {
	today time.Time
}

func (c fixedClock) Today() time.Time {
	return c.today
}

// fakeGoalStore keeps goals in a map and returns copies, the way a real
// repository returns freshly decoded documents.
type fakeGoalStore struct {
	goals   map[primitive.ObjectID]models.Goal
	updates int
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: make(map[primitive.ObjectID]models.Goal)}
}

func (s *fakeGoalStore) put(g models.Goal) {
	s.goals[g.ID] = g
}

func (s *fakeGoalStore) GetGoalByID(_ context.Context, id primitive.ObjectID) (*models.Goal, error) {
	g, ok := s.goals[id]
	if !ok {
		return nil, errors.New("goal not found")
	}
	copied := g
	return &copied, nil
}

func (s *fakeGoalStore) GetGoalsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeGoalStore) UpdateGoalState(_ context.Context, goal *models.Goal) error {
	s.updates++
	s.goals[goal.ID] = *goal
	return nil
}

func (s *fakeGoalStore) CreateDefaultGoals(_ context.Context, userID primitive.ObjectID) error {
	for _, category := range models.DefaultCategories {
		s.put(models.Goal{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			Category:    category,
			DailyTarget: models.DefaultDailyTarget,
		})
	}
	return nil
}

// 2024-01-01 is a Monday.
var serviceMonday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func newTestService(store *fakeGoalStore, today time.Time) *GoalService {
	return NewGoalService(store).WithClock(fixedClock{today: today})
}

func seedGoal(store *fakeGoalStore, userID primitive.ObjectID) models.Goal {
	g := models.Goal{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Category:    models.CategoryDSA,
		DailyTarget: 3,
	}
	store.put(g)
	return g
}

func TestAddProgressPersistsState(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	goal, triggered, err := svc.AddProgress(context.Background(), seeded.ID.Hex(), userID, 3)
	require.NoError(t, err)
	assert.True(t, triggered)
	assert.Equal(t, 3, goal.DailyProgress)

	// The mutated state must be persisted, not just returned.
	stored := store.goals[seeded.ID]
	assert.Equal(t, 3, stored.DailyProgress)
	assert.Equal(t, []int{0}, stored.CurrentWeekDaysCompleted)
	assert.Equal(t, 1, store.updates)
}

func TestAddProgressRejectsForeignGoal(t *testing.T) {
	store := newFakeGoalStore()
	owner := primitive.NewObjectID()
	seeded := seedGoal(store, owner)
	svc := newTestService(store, serviceMonday)

	_, _, err := svc.AddProgress(context.Background(), seeded.ID.Hex(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrGoalNotOwned)
	assert.Equal(t, 0, store.updates)
}

func TestAddProgressInvalidID(t *testing.T) {
	store := newFakeGoalStore()
	svc := newTestService(store, serviceMonday)

	_, _, err := svc.AddProgress(context.Background(), "not-a-hex-id", primitive.NewObjectID(), 1)
	assert.Error(t, err)
}

func TestSubtractProgressRevokesTodaysCompletion(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	_, _, err := svc.AddProgress(context.Background(), seeded.ID.Hex(), userID, 3)
	require.NoError(t, err)

	goal, err := svc.SubtractProgress(context.Background(), seeded.ID.Hex(), userID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, goal.DailyProgress)
	assert.Empty(t, goal.CurrentWeekDaysCompleted)

	stored := store.goals[seeded.ID]
	assert.Empty(t, stored.CurrentWeekDaysCompleted)
}

func TestMarkDayCompleted(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	goal, err := svc.MarkDayCompleted(context.Background(), seeded.ID.Hex(), userID)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, goal.CurrentWeekDaysCompleted)
	require.NotNil(t, goal.LastCompletedDate)
	assert.Equal(t, serviceMonday, *goal.LastCompletedDate)
	assert.Equal(t, 1, store.updates)
}

func TestRemoveDayCompletedAbsentDoesNotPersist(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	_, err := svc.RemoveDayCompleted(context.Background(), seeded.ID.Hex(), userID)
	assert.ErrorIs(t, err, models.ErrDayNotCompleted)
	assert.Equal(t, 0, store.updates, "a failed undo must not write anything")
}

func TestRemoveDayCompleted(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	_, err := svc.MarkDayCompleted(context.Background(), seeded.ID.Hex(), userID)
	require.NoError(t, err)

	goal, err := svc.RemoveDayCompleted(context.Background(), seeded.ID.Hex(), userID)
	require.NoError(t, err)
	assert.Empty(t, goal.CurrentWeekDaysCompleted)
}

func TestListGoalsForcesDailyRollover(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	_, _, err := svc.AddProgress(context.Background(), seeded.ID.Hex(), userID, 2)
	require.NoError(t, err)

	// Reading the next day must report fresh progress, not Monday's.
	tuesday := serviceMonday.AddDate(0, 0, 1)
	responses, err := newTestService(store, tuesday).ListGoals(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, 0, responses[0].DailyProgress)
	assert.False(t, responses[0].IsDailyGoalCompleted)
}

func TestUpdateDailyTargetClampsProgress(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	_, _, err := svc.AddProgress(context.Background(), seeded.ID.Hex(), userID, 3)
	require.NoError(t, err)

	goal, err := svc.UpdateDailyTarget(context.Background(), seeded.ID.Hex(), userID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, goal.DailyTarget)
	assert.Equal(t, 2, goal.DailyProgress)
}

func TestUpdateDailyTargetRejectsNonPositive(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	seeded := seedGoal(store, userID)
	svc := newTestService(store, serviceMonday)

	_, err := svc.UpdateDailyTarget(context.Background(), seeded.ID.Hex(), userID, 0)
	assert.Error(t, err)
	assert.Equal(t, 0, store.updates)
}

func TestCreateDefaultGoals(t *testing.T) {
	store := newFakeGoalStore()
	userID := primitive.NewObjectID()
	svc := newTestService(store, serviceMonday)

	require.NoError(t, svc.CreateDefaultGoals(context.Background(), userID))

	goals, err := store.GetGoalsByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, goals, len(models.DefaultCategories))
}
