package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/services"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler serves a user's notifications and the activity feed.
type NotificationHandler struct {
	Service         *services.NotificationService
	ActivityService *services.ActivityService
}

// NewNotificationHandler creates a new instance of NotificationHandler.
func NewNotificationHandler(service *services.NotificationService, activityService *services.ActivityService) *NotificationHandler {
	return &NotificationHandler{
		Service:         service,
		ActivityService: activityService,
	}
}

// GetNotificationsHandler lists the user's notifications.
func (h *NotificationHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch notifications")
		http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

// MarkReadHandler flags a notification as read.
func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedObjectID(w, r); !ok {
		return
	}

	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkNotificationAsRead(r.Context(), notifID); err != nil {
		logrus.WithError(err).Error("Failed to mark notification as read")
		http.Error(w, "Failed to mark notification as read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// GetActivitiesHandler returns the user's recent activity feed.
func (h *NotificationHandler) GetActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	activities, err := h.ActivityService.GetRecentActivities(r.Context(), userID, 50)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch activities")
		http.Error(w, "Failed to fetch activities", http.StatusInternalServerError)
		return
	}

	if activities == nil {
		activities = []models.Activity{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(activities)
}
