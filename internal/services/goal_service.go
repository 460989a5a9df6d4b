package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrGoalNotOwned is returned when a user touches a goal belonging to someone else.
var ErrGoalNotOwned = errors.New("goal does not belong to this user")

// Clock supplies "today" to the tracker so tests can pin the calendar.
type Clock interface {
	Today() time.Time
}

type realClock struct{}

func (realClock) Today() time.Time {
	return time.Now().UTC()
}

// GoalStore is the persistence surface the goal service needs. Implemented
// by repository.GoalRepository; tests substitute an in-memory store.
type GoalStore interface {
	GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error)
	GetGoalsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Goal, error)
	UpdateGoalState(ctx context.Context, goal *models.Goal) error
	CreateDefaultGoals(ctx context.Context, userID primitive.ObjectID) error
}

// GoalService orchestrates the goal tracker: it loads one goal, applies a
// state transition for "today", and persists the result within the request.
type GoalService struct {
	store GoalStore
	clock Clock
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(store GoalStore) *GoalService {
	return &GoalService{
		store: store,
		clock: realClock{},
	}
}

// WithClock overrides the clock; used by tests.
func (s *GoalService) WithClock(clock Clock) *GoalService {
	s.clock = clock
	return s
}

// Today returns the tracker's current date.
func (s *GoalService) Today() time.Time {
	return s.clock.Today()
}

// CreateDefaultGoals sets up the four category goals for a new account.
func (s *GoalService) CreateDefaultGoals(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.store.CreateDefaultGoals(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to create default goals")
		return fmt.Errorf("failed to create default goals: %v", err)
	}
	return nil
}

// ListGoals returns all of a user's goals serialized for the API, forcing
// the daily-rollover check on each so no stale progress leaks out.
func (s *GoalService) ListGoals(ctx context.Context, userID primitive.ObjectID) ([]models.GoalResponse, error) {
	goals, err := s.store.GetGoalsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}

	today := s.clock.Today()
	responses := make([]models.GoalResponse, 0, len(goals))
	for i := range goals {
		responses = append(responses, goals[i].ToResponse(today))
	}
	return responses, nil
}

// AddProgress logs amount actions against today's target and reports whether
// this call completed the day.
func (s *GoalService) AddProgress(ctx context.Context, goalID string, userID primitive.ObjectID, amount int) (*models.Goal, bool, error) {
	goal, err := s.getOwnedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, false, err
	}

	today := s.clock.Today()
	triggered := goal.AddProgress(amount, today)

	if err := s.store.UpdateGoalState(ctx, goal); err != nil {
		return nil, false, fmt.Errorf("failed to persist goal: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id":        goal.ID.Hex(),
		"daily_progress": goal.DailyProgress,
		"completed":      triggered,
	}).Info("Progress added")

	return goal, triggered, nil
}

// SubtractProgress undoes amount actions for today, revoking the day's
// completion when progress falls back below the target.
func (s *GoalService) SubtractProgress(ctx context.Context, goalID string, userID primitive.ObjectID, amount int) (*models.Goal, error) {
	goal, err := s.getOwnedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	goal.SubtractProgress(amount, s.clock.Today())

	if err := s.store.UpdateGoalState(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to persist goal: %v", err)
	}

	return goal, nil
}

// MarkDayCompleted marks today as a completed day regardless of progress.
func (s *GoalService) MarkDayCompleted(ctx context.Context, goalID string, userID primitive.ObjectID) (*models.Goal, error) {
	goal, err := s.getOwnedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	goal.AddCompletedDay(s.clock.Today())

	if err := s.store.UpdateGoalState(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to persist goal: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id":       goal.ID.Hex(),
		"weekly_streak": goal.WeeklyStreak,
	}).Info("Day marked completed")

	return goal, nil
}

// RemoveDayCompleted undoes today's completion. Nothing is persisted when
// today was never marked completed; the tracker's error is passed through.
func (s *GoalService) RemoveDayCompleted(ctx context.Context, goalID string, userID primitive.ObjectID) (*models.Goal, error) {
	goal, err := s.getOwnedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	if err := goal.RemoveCompletedDay(s.clock.Today()); err != nil {
		return nil, err
	}

	if err := s.store.UpdateGoalState(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to persist goal: %v", err)
	}

	return goal, nil
}

// UpdateDailyTarget changes the goal's daily target. Progress is clamped so
// the 0 ≤ progress ≤ target invariant keeps holding; a lowered target never
// back-fills a completion event.
func (s *GoalService) UpdateDailyTarget(ctx context.Context, goalID string, userID primitive.ObjectID, target int) (*models.Goal, error) {
	if target < 1 {
		return nil, fmt.Errorf("daily target must be a positive integer")
	}

	goal, err := s.getOwnedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	goal.DailyTarget = target
	if goal.DailyProgress > goal.DailyTarget {
		goal.DailyProgress = goal.DailyTarget
	}

	if err := s.store.UpdateGoalState(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to persist goal: %v", err)
	}

	return goal, nil
}

func (s *GoalService) getOwnedGoal(ctx context.Context, goalID string, userID primitive.ObjectID) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return nil, fmt.Errorf("invalid goal ID: %v", err)
	}

	goal, err := s.store.GetGoalByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("goal not found: %v", err)
	}

	if goal.UserID != userID {
		logger.Log.WithFields(map[string]interface{}{
			"goal_id": goalID,
			"user_id": userID.Hex(),
		}).Warn("User attempted to access another user's goal")
		return nil, ErrGoalNotOwned
	}

	return goal, nil
}
