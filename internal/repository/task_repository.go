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

// TaskRepository struct handles database operations related to tasks
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		collection: db.Collection("tasks"),
	}
}

// CreateTask inserts a new task into the database
func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert task")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	task.ID = insertedID

	logger.Log.WithField("task_id", task.ID.Hex()).Info("Task created successfully")
	return task, nil
}

// GetTaskByID fetches a task by its ID
func (r *TaskRepository) GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to find task by ID")
		return nil, err
	}

	return &task, nil
}

// GetTasks fetches tasks for a user with optional category and completion filters
func (r *TaskRepository) GetTasks(ctx context.Context, userID primitive.ObjectID, category string, completed *bool) ([]models.Task, error) {
	filter := bson.M{"user_id": userID}
	if category != "" {
		filter["category"] = category
	}
	if completed != nil {
		filter["completed"] = *completed
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch tasks")
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			logger.Log.WithError(err).Error("Failed to decode task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// UpdateTask updates an existing task in the database
func (r *TaskRepository) UpdateTask(ctx context.Context, id primitive.ObjectID, task *models.Task) (*models.Task, error) {
	task.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": task},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to update task")
		return nil, err
	}

	logger.Log.WithField("task_id", id.Hex()).Info("Task updated successfully")
	return task, nil
}

// DeleteTask deletes a task from the database by its ID
func (r *TaskRepository) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to delete task")
		return err
	}

	logger.Log.WithField("task_id", id.Hex()).Info("Task deleted successfully")
	return nil
}
