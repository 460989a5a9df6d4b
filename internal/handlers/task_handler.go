package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/services"
	"github.com/studytrack/studytrack-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskHandler handles HTTP requests related to tasks.
type TaskHandler struct {
	Service         *services.TaskService
	ActivityService *services.ActivityService
}

// NewTaskHandler creates a new instance of TaskHandler.
func NewTaskHandler(taskService *services.TaskService, activityService *services.ActivityService) *TaskHandler {
	return &TaskHandler{
		Service:         taskService,
		ActivityService: activityService,
	}
}

// CreateTaskHandler handles the creation of a new task.
func (h *TaskHandler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during task creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	task.UserID = userID
	if task.DueDate != nil && task.DueDate.Before(time.Now()) {
		http.Error(w, "Due date cannot be in the past", http.StatusBadRequest)
		return
	}

	createdTask, err := h.Service.CreateTask(r.Context(), &task)
	if err != nil {
		logrus.WithError(err).Error("Failed to create task")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.ActivityService != nil {
		_ = h.ActivityService.LogActivity(r.Context(), userID, "task_created", createdTask.ID,
			"Created task: "+createdTask.Title)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createdTask)
}

// GetTasksHandler lists the user's tasks with optional filters.
func (h *TaskHandler) GetTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")

	var completed *bool
	if raw := r.URL.Query().Get("completed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid completed filter", http.StatusBadRequest)
			return
		}
		completed = &parsed
	}

	tasks, err := h.Service.GetTasks(r.Context(), userID, category, completed)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch tasks")
		http.Error(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}

	if tasks == nil {
		tasks = []models.Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

// GetTaskHandler fetches a single task by ID.
func (h *TaskHandler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	task, err := h.Service.GetTask(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// UpdateTaskHandler replaces a task's fields.
func (h *TaskHandler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateTask(r.Context(), mux.Vars(r)["id"], userID, &task)
	if err != nil {
		logrus.WithError(err).Warn("Failed to update task")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteTaskHandler removes a task.
func (h *TaskHandler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteTask(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		logrus.WithError(err).Warn("Failed to delete task")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authenticatedObjectID extracts the logged-in user's ObjectID from the
// request context, writing the error response itself on failure.
func authenticatedObjectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return primitive.NilObjectID, false
	}
	return userID, true
}
