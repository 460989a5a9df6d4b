package repository

import (
	"context"
	"time"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GoalRepository struct handles database operations related to goals
type GoalRepository struct {
	collection *mongo.Collection
}

// NewGoalRepository creates a new instance of GoalRepository
func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{
		collection: db.Collection("goals"),
	}
}

// CreateGoal creates a new goal in the database. The unique (user_id,
// category) index rejects a duplicate category for the same user.
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert goal")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	goal.ID = insertedID

	logger.Log.WithField("goal_id", goal.ID.Hex()).Info("Goal created successfully")
	return goal, nil
}

// CreateDefaultGoals creates the four default category goals for a new user.
func (r *GoalRepository) CreateDefaultGoals(ctx context.Context, userID primitive.ObjectID) error {
	for _, category := range models.DefaultCategories {
		goal := &models.Goal{
			UserID:      userID,
			Category:    category,
			DailyTarget: models.DefaultDailyTarget,
		}
		if _, err := r.CreateGoal(ctx, goal); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"user_id":  userID.Hex(),
				"category": category,
			}).Error("Failed to create default goal")
			return err
		}
	}

	logger.Log.WithField("user_id", userID.Hex()).Info("Default goals created")
	return nil
}

// GetGoalByID fetches a goal by its ID
func (r *GoalRepository) GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var goal models.Goal

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to find goal by ID")
		return nil, err
	}

	return &goal, nil
}

// GetGoalsByUser fetches all goals belonging to a user, ordered by category
// so the client always receives them in a stable order.
func (r *GoalRepository) GetGoalsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Goal, error) {
	var goals []models.Goal

	findOptions := options.Find().SetSort(bson.D{{Key: "category", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch user goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var goal models.Goal
		if err := cursor.Decode(&goal); err != nil {
			logger.Log.WithError(err).Error("Failed to decode goal")
			return nil, err
		}
		goals = append(goals, goal)
	}

	return goals, nil
}

// GetAllGoals fetches all goals from the database, used by the reminder scan.
func (r *GoalRepository) GetAllGoals(ctx context.Context, limit int64) ([]models.Goal, error) {
	var goals []models.Goal

	findOptions := options.Find().SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var goal models.Goal
		if err := cursor.Decode(&goal); err != nil {
			logger.Log.WithError(err).Error("Failed to decode goal")
			return nil, err
		}
		goals = append(goals, goal)
	}

	return goals, nil
}

// UpdateGoalState writes back the full tracker state of a goal after a
// mutation. Each request performs one read-modify-write cycle; atomicity
// across concurrent writers is whatever MongoDB provides for a single
// document replace.
func (r *GoalRepository) UpdateGoalState(ctx context.Context, goal *models.Goal) error {
	goal.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"daily_target":                goal.DailyTarget,
		"daily_progress":              goal.DailyProgress,
		"last_daily_reset":            goal.LastDailyReset,
		"weekly_streak":               goal.WeeklyStreak,
		"current_week_days_completed": goal.CurrentWeekDaysCompleted,
		"current_week_start":          goal.CurrentWeekStart,
		"last_completed_date":         goal.LastCompletedDate,
		"streak_started_at":           goal.StreakStartedAt,
		"updated_at":                  goal.UpdatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": goal.ID}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", goal.ID.Hex()).Error("Failed to update goal state")
		return err
	}

	logger.Log.WithField("goal_id", goal.ID.Hex()).Info("Goal state updated")
	return nil
}
