package repository

import (
	"context"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository handles database operations for the activity log
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository creates a new instance of ActivityRepository
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// CreateActivity inserts an activity record
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	_, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert activity")
		return err
	}
	return nil
}

// GetUserActivities returns the most recent activities for a user
func (r *ActivityRepository) GetUserActivities(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch activities")
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	for cursor.Next(ctx) {
		var activity models.Activity
		if err := cursor.Decode(&activity); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	return activities, nil
}
