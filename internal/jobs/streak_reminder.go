package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/studytrack/studytrack-backend/internal/repository"
	"github.com/studytrack/studytrack-backend/internal/services"
	"github.com/studytrack/studytrack-backend/pkg/email"
	"github.com/sirupsen/logrus"
)

// StreakReminder nudges users whose daily goals are still unfinished late in
// the day, so a running streak is not lost by forgetting to log progress.
type StreakReminder struct {
	GoalRepo            *repository.GoalRepository
	UserRepo            *repository.UserRepository
	NotificationService *services.NotificationService
}

// NewStreakReminder creates a new instance of StreakReminder
func NewStreakReminder(goalRepo *repository.GoalRepository, userRepo *repository.UserRepository, notifService *services.NotificationService) *StreakReminder {
	return &StreakReminder{
		GoalRepo:            goalRepo,
		UserRepo:            userRepo,
		NotificationService: notifService,
	}
}

// RunDailyScan checks every goal and notifies users with unfinished daily targets.
func (s *StreakReminder) RunDailyScan(ctx context.Context) error {
	goals, err := s.GoalRepo.GetAllGoals(ctx, 10000)
	if err != nil {
		return fmt.Errorf("failed to fetch goals: %v", err)
	}

	today := time.Now().UTC()
	reminded := 0

	for i := range goals {
		goal := &goals[i]
		if goal.IsDailyGoalCompleted(today) {
			continue
		}

		title := "Daily goal reminder"
		message := fmt.Sprintf("Your %s goal is at %d/%d for today.",
			goal.Category, goal.DailyProgress, goal.DailyTarget)
		if goal.WeeklyStreak > 0 {
			title = "Streak at risk"
			message = fmt.Sprintf("Your %s goal is at %d/%d for today. Keep your %d-week streak alive!",
				goal.Category, goal.DailyProgress, goal.DailyTarget, goal.WeeklyStreak)
		}

		_ = s.NotificationService.CreateNotification(
			ctx,
			goal.UserID,
			"daily_goal_reminder",
			title,
			message,
			&goal.ID,
		)

		if user, err := s.UserRepo.GetUserByID(ctx, goal.UserID); err == nil {
			if err := email.SendEmail(user.Email, title, message); err != nil {
				logrus.WithError(err).WithField("user_id", goal.UserID.Hex()).Warn("Failed to send reminder email")
			}
		}
		reminded++
	}

	logrus.WithField("reminders", reminded).Info("Daily streak reminder scan completed")
	return nil
}
