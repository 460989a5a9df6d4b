package services

import (
	"context"
	"fmt"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/repository"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService encapsulates the business logic for tasks.
type TaskService struct {
	repo *repository.TaskRepository
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// CreateTask validates and stores a new task.
func (s *TaskService) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Title == "" {
		logger.Log.Warn("Task title is empty during creation")
		return nil, fmt.Errorf("task title is required")
	}

	if task.Category != "" {
		if _, ok := models.AllowedCategories[task.Category]; !ok {
			return nil, fmt.Errorf("invalid category: %q", task.Category)
		}
	}

	createdTask, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create task")
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	return createdTask, nil
}

// GetTask retrieves a task by ID, enforcing ownership.
func (s *TaskService) GetTask(ctx context.Context, id string, userID primitive.ObjectID) (*models.Task, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task ID: %v", err)
	}

	task, err := s.repo.GetTaskByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %v", err)
	}

	if task.UserID != userID {
		return nil, fmt.Errorf("task does not belong to this user")
	}

	return task, nil
}

// GetTasks lists a user's tasks with optional filters.
func (s *TaskService) GetTasks(ctx context.Context, userID primitive.ObjectID, category string, completed *bool) ([]models.Task, error) {
	tasks, err := s.repo.GetTasks(ctx, userID, category, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %v", err)
	}
	return tasks, nil
}

// UpdateTask updates an existing task, enforcing ownership.
func (s *TaskService) UpdateTask(ctx context.Context, id string, userID primitive.ObjectID, updated *models.Task) (*models.Task, error) {
	existing, err := s.GetTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt

	task, err := s.repo.UpdateTask(ctx, existing.ID, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return task, nil
}

// DeleteTask removes a task, enforcing ownership.
func (s *TaskService) DeleteTask(ctx context.Context, id string, userID primitive.ObjectID) error {
	existing, err := s.GetTask(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}

	return nil
}
