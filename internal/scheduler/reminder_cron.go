package cron

import (
	"context"

	"github.com/studytrack/studytrack-backend/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartReminderCronJobs schedules the daily streak reminder scan.
func StartReminderCronJobs(reminder *jobs.StreakReminder) {
	c := cron.New()

	// Evening nudge while there is still time to finish today's targets
	c.AddFunc("0 18 * * *", func() {
		err := reminder.RunDailyScan(context.Background())
		if err != nil {
			logrus.WithError(err).Error("Streak reminder scan failed")
		}
	})

	c.Start()
}
