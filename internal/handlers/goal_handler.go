package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/studytrack/studytrack-backend/internal/services"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxProgressAmount caps a single progress mutation. Enforced here at the
// API boundary; the tracker itself accepts any positive amount.
const MaxProgressAmount = 20

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service         *services.GoalService
	ActivityService *services.ActivityService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(goalService *services.GoalService, activityService *services.ActivityService) *GoalHandler {
	return &GoalHandler{
		Service:         goalService,
		ActivityService: activityService,
	}
}

// GetGoalsHandler lists the authenticated user's goals.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}

	goals, err := h.Service.ListGoals(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list goals")
		http.Error(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goals)
}

// UpdateGoalHandler changes a goal's daily target.
func (h *GoalHandler) UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	goalID := mux.Vars(r)["id"]

	var body struct {
		DailyTarget int `json:"daily_target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if body.DailyTarget < 1 {
		http.Error(w, "daily_target must be a positive integer", http.StatusBadRequest)
		return
	}

	goal, err := h.Service.UpdateDailyTarget(r.Context(), goalID, userID, body.DailyTarget)
	if err != nil {
		h.writeGoalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goal.ToResponse(h.Service.Today()))
}

// AddProgressHandler logs progress against today's target.
func (h *GoalHandler) AddProgressHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	goalID := mux.Vars(r)["id"]

	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	if amount > MaxProgressAmount {
		http.Error(w, fmt.Sprintf("amount must not exceed %d", MaxProgressAmount), http.StatusBadRequest)
		return
	}

	goal, triggered, err := h.Service.AddProgress(r.Context(), goalID, userID, amount)
	if err != nil {
		h.writeGoalError(w, err)
		return
	}

	if triggered && h.ActivityService != nil {
		_ = h.ActivityService.LogActivity(r.Context(), userID, "day_completed", goal.ID,
			fmt.Sprintf("Completed daily goal for %s", goal.Category))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"daily_progress":             goal.DailyProgress,
		"daily_target":               goal.DailyTarget,
		"is_daily_goal_completed":    goal.DailyProgress >= goal.DailyTarget,
		"daily_completion_triggered": triggered,
	})
}

// SubtractProgressHandler undoes progress logged today.
func (h *GoalHandler) SubtractProgressHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	goalID := mux.Vars(r)["id"]

	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}

	goal, err := h.Service.SubtractProgress(r.Context(), goalID, userID, amount)
	if err != nil {
		h.writeGoalError(w, err)
		return
	}

	resp := goal.ToResponse(h.Service.Today())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"daily_progress":              resp.DailyProgress,
		"daily_target":                resp.DailyTarget,
		"is_daily_goal_completed":     resp.IsDailyGoalCompleted,
		"weekly_streak":               resp.WeeklyStreak,
		"current_week_days_completed": resp.CurrentWeekDaysCompleted,
		"days_completed_this_week":    resp.DaysCompletedThisWeek,
		"is_week_completed":           resp.IsWeekCompleted,
	})
}

// MarkDayCompletedHandler marks today as completed for the goal.
func (h *GoalHandler) MarkDayCompletedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	goalID := mux.Vars(r)["id"]

	goal, err := h.Service.MarkDayCompleted(r.Context(), goalID, userID)
	if err != nil {
		h.writeGoalError(w, err)
		return
	}

	if h.ActivityService != nil {
		_ = h.ActivityService.LogActivity(r.Context(), userID, "day_completed", goal.ID,
			fmt.Sprintf("Marked day completed for %s", goal.Category))
	}

	resp := goal.ToResponse(h.Service.Today())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":                      "success",
		"message":                     "Day marked as completed",
		"weekly_streak":               resp.WeeklyStreak,
		"current_week_days_completed": resp.CurrentWeekDaysCompleted,
		"days_completed_this_week":    resp.DaysCompletedThisWeek,
		"is_week_completed":           resp.IsWeekCompleted,
		"last_completed_date":         resp.LastCompletedDate,
		"current_week_start":          resp.CurrentWeekStart,
	})
}

// RemoveDayCompletedHandler undoes today's completion.
func (h *GoalHandler) RemoveDayCompletedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUserID(w, r)
	if !ok {
		return
	}
	goalID := mux.Vars(r)["id"]

	goal, err := h.Service.RemoveDayCompleted(r.Context(), goalID, userID)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotOwned) {
			http.Error(w, "Forbidden: you can only modify your own goals", http.StatusForbidden)
			return
		}
		// Includes the "day was not marked completed" case.
		logrus.WithError(err).WithField("goalID", goalID).Warn("Failed to remove completed day")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := goal.ToResponse(h.Service.Today())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":                   "success",
		"message":                  "Day completion removed",
		"weekly_streak":            resp.WeeklyStreak,
		"days_completed_this_week": resp.DaysCompletedThisWeek,
		"is_week_completed":        resp.IsWeekCompleted,
	})
}

func (h *GoalHandler) authenticatedUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	return authenticatedObjectID(w, r)
}

func (h *GoalHandler) decodeAmount(w http.ResponseWriter, r *http.Request) (int, bool) {
	var body struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return 0, false
	}
	defer r.Body.Close()

	if body.Amount < 1 {
		http.Error(w, "amount must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return body.Amount, true
}

func (h *GoalHandler) writeGoalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrGoalNotOwned):
		http.Error(w, "Forbidden: you can only modify your own goals", http.StatusForbidden)
	default:
		logrus.WithError(err).Warn("Goal operation failed")
		http.Error(w, err.Error(), http.StatusNotFound)
	}
}
