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

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)

	_, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert notification")
		return err
	}

	return nil
}

// GetUserNotifications returns a user's notifications, newest first
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch notifications")
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	for cursor.Next(ctx) {
		var notif models.Notification
		if err := cursor.Decode(&notif); err != nil {
			logger.Log.WithError(err).Error("Failed to decode notification")
			return nil, err
		}
		notifications = append(notifications, notif)
	}

	return notifications, nil
}

// MarkAsRead sets the read flag on a notification
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		logger.Log.WithError(err).WithField("notification_id", id.Hex()).Error("Failed to mark notification as read")
		return err
	}
	return nil
}

// DeleteNotification deletes a specific notification
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("notification_id", id.Hex()).Error("Failed to delete notification")
		return err
	}
	return nil
}
