package models

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The four study tracks every account gets a goal for.
const (
	CategoryDSA          = "dsa"
	CategoryDevelopment  = "development"
	CategorySystemDesign = "system_design"
	CategoryJobSearch    = "job_search"
)

// AllowedCategories is the fixed category enumeration for goals and tasks.
var AllowedCategories = map[string]struct{}{
	CategoryDSA:          {},
	CategoryDevelopment:  {},
	CategorySystemDesign: {},
	CategoryJobSearch:    {},
}

// DefaultCategories lists the goals created for a new account, in display order.
var DefaultCategories = []string{
	CategoryDSA,
	CategoryDevelopment,
	CategorySystemDesign,
	CategoryJobSearch,
}

const (
	// DefaultDailyTarget is the daily action count assigned to each goal at signup.
	DefaultDailyTarget = 3

	// WeekCompletionThreshold is the number of completed weekdays that marks a week complete.
	WeekCompletionThreshold = 5
)

// ErrDayNotCompleted is returned when undoing a completion for a day that was never completed.
var ErrDayNotCompleted = errors.New("day was not marked completed")

// Goal tracks daily progress and the weekly streak for one (user, category) pair.
// All calendar-dependent methods take "today" explicitly; callers persist the
// mutated record after the method returns.
type Goal struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Category                 string             `bson:"category" json:"category"`
	DailyTarget              int                `bson:"daily_target" json:"daily_target"`
	DailyProgress            int                `bson:"daily_progress" json:"daily_progress"`
	LastDailyReset           *time.Time         `bson:"last_daily_reset,omitempty" json:"-"`
	WeeklyStreak             int                `bson:"weekly_streak" json:"weekly_streak"`
	CurrentWeekDaysCompleted []int              `bson:"current_week_days_completed" json:"current_week_days_completed"`
	CurrentWeekStart         *time.Time         `bson:"current_week_start,omitempty" json:"-"`
	LastCompletedDate        *time.Time         `bson:"last_completed_date,omitempty" json:"-"`
	StreakStartedAt          *time.Time         `bson:"streak_started_at,omitempty" json:"-"`
	CreatedAt                time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time          `bson:"updated_at" json:"updated_at"`
}

// DateOnly truncates a timestamp to midnight UTC so calendar dates compare exactly.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayIndex maps a date to the Monday=0 .. Sunday=6 convention.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// MondayOf returns the Monday on or before the given date.
func MondayOf(t time.Time) time.Time {
	d := DateOnly(t)
	return d.AddDate(0, 0, -WeekdayIndex(d))
}

// checkAndHandleNewWeek starts tracking a new week once today's Monday moves
// past the stored anchor. Any streak accrued for the old week is discarded
// here; crediting happens only inside AddCompletedDay.
func (g *Goal) checkAndHandleNewWeek(today time.Time) {
	monday := MondayOf(today)
	if g.CurrentWeekStart == nil || monday.After(*g.CurrentWeekStart) {
		g.CurrentWeekStart = &monday
		g.CurrentWeekDaysCompleted = nil
		g.WeeklyStreak = 0
		g.StreakStartedAt = nil
	}
}

// resetDailyProgressIfNeeded zeroes daily progress on the first touch of a new day.
func (g *Goal) resetDailyProgressIfNeeded(today time.Time) {
	day := DateOnly(today)
	if g.LastDailyReset == nil || !g.LastDailyReset.Equal(day) {
		g.DailyProgress = 0
		g.LastDailyReset = &day
	}
}

// EnsureCurrentDay forces the daily-rollover check without touching the week
// state. Read paths call this so a goal fetched on a new day never reports
// yesterday's progress.
func (g *Goal) EnsureCurrentDay(today time.Time) {
	g.resetDailyProgressIfNeeded(today)
}

// AddProgress records amount actions for today, clamped to the daily target.
// It reports whether this call pushed the goal over the target, in which case
// today has already been added to the completed-days set.
func (g *Goal) AddProgress(amount int, today time.Time) bool {
	g.checkAndHandleNewWeek(today)
	g.resetDailyProgressIfNeeded(today)

	old := g.DailyProgress
	g.DailyProgress = old + amount
	if g.DailyProgress > g.DailyTarget {
		g.DailyProgress = g.DailyTarget
	}

	if old < g.DailyTarget && g.DailyProgress >= g.DailyTarget {
		g.AddCompletedDay(today)
		return true
	}
	return false
}

// SubtractProgress undoes amount actions for today, flooring at zero. When the
// goal drops back below the target, today's completion is revoked and the
// streak recomputed. The week anchor is left alone so a correction cannot
// trigger a rollover.
func (g *Goal) SubtractProgress(amount int, today time.Time) {
	g.resetDailyProgressIfNeeded(today)

	old := g.DailyProgress
	g.DailyProgress = old - amount
	if g.DailyProgress < 0 {
		g.DailyProgress = 0
	}

	if old >= g.DailyTarget && g.DailyProgress < g.DailyTarget {
		g.removeWeekday(WeekdayIndex(today))
		g.updateWeeklyStreak()
	}
}

// AddCompletedDay marks the weekday of date as completed in the tracked week.
// Repeat calls for the same date are no-ops.
func (g *Goal) AddCompletedDay(date time.Time) {
	g.checkAndHandleNewWeek(date)

	wd := WeekdayIndex(date)
	if g.hasWeekday(wd) {
		return
	}
	g.insertWeekday(wd)

	day := DateOnly(date)
	g.LastCompletedDate = &day
	g.updateWeeklyStreak()
}

// RemoveCompletedDay undoes a completion for the weekday of date. It returns
// ErrDayNotCompleted, without mutating anything, when that weekday was never
// marked completed in the tracked week.
func (g *Goal) RemoveCompletedDay(date time.Time) error {
	wd := WeekdayIndex(date)
	if !g.hasWeekday(wd) {
		return ErrDayNotCompleted
	}
	g.removeWeekday(wd)
	g.updateWeeklyStreak()
	return nil
}

// updateWeeklyStreak re-derives the streak from the tracked week. The
// consecutive-week check compares against streakStartedAt + 7 days; the start
// stays pinned to the streak's first Monday, so only the second week of a run
// ever matches.
func (g *Goal) updateWeeklyStreak() {
	if len(g.CurrentWeekDaysCompleted) >= WeekCompletionThreshold {
		if g.WeeklyStreak == 0 {
			g.WeeklyStreak = 1
			g.StreakStartedAt = g.CurrentWeekStart
			return
		}
		expectedNextMonday := g.StreakStartedAt.AddDate(0, 0, 7)
		if g.CurrentWeekStart != nil && g.CurrentWeekStart.Equal(expectedNextMonday) {
			g.WeeklyStreak++
		} else {
			g.WeeklyStreak = 1
			g.StreakStartedAt = g.CurrentWeekStart
		}
		return
	}

	g.WeeklyStreak = 0
	g.StreakStartedAt = nil
}

// IsDailyGoalCompleted reports whether today's target has been reached,
// forcing the daily-rollover check first.
func (g *Goal) IsDailyGoalCompleted(today time.Time) bool {
	g.resetDailyProgressIfNeeded(today)
	return g.DailyProgress >= g.DailyTarget
}

// IsWeekCompleted reports whether the tracked week has reached the threshold.
func (g *Goal) IsWeekCompleted() bool {
	return len(g.CurrentWeekDaysCompleted) >= WeekCompletionThreshold
}

// DaysCompletedThisWeek returns the number of distinct weekdays completed in
// the tracked week.
func (g *Goal) DaysCompletedThisWeek() int {
	return len(g.CurrentWeekDaysCompleted)
}

func (g *Goal) hasWeekday(wd int) bool {
	i := sort.SearchInts(g.CurrentWeekDaysCompleted, wd)
	return i < len(g.CurrentWeekDaysCompleted) && g.CurrentWeekDaysCompleted[i] == wd
}

// insertWeekday keeps the completed-days slice sorted ascending so its
// serialized order is stable.
func (g *Goal) insertWeekday(wd int) {
	i := sort.SearchInts(g.CurrentWeekDaysCompleted, wd)
	g.CurrentWeekDaysCompleted = append(g.CurrentWeekDaysCompleted, 0)
	copy(g.CurrentWeekDaysCompleted[i+1:], g.CurrentWeekDaysCompleted[i:])
	g.CurrentWeekDaysCompleted[i] = wd
}

func (g *Goal) removeWeekday(wd int) {
	i := sort.SearchInts(g.CurrentWeekDaysCompleted, wd)
	if i < len(g.CurrentWeekDaysCompleted) && g.CurrentWeekDaysCompleted[i] == wd {
		g.CurrentWeekDaysCompleted = append(g.CurrentWeekDaysCompleted[:i], g.CurrentWeekDaysCompleted[i+1:]...)
	}
}

// GoalResponse is the serialized representation returned to the frontend.
type GoalResponse struct {
	ID                       string  `json:"id"`
	Category                 string  `json:"category"`
	DailyTarget              int     `json:"daily_target"`
	DailyProgress            int     `json:"daily_progress"`
	IsDailyGoalCompleted     bool    `json:"is_daily_goal_completed"`
	WeeklyStreak             int     `json:"weekly_streak"`
	CurrentWeekDaysCompleted []int   `json:"current_week_days_completed"`
	DaysCompletedThisWeek    int     `json:"days_completed_this_week"`
	IsWeekCompleted          bool    `json:"is_week_completed"`
	CurrentWeekStart         *string `json:"current_week_start"`
	LastCompletedDate        *string `json:"last_completed_date"`
	StreakStartedAt          *string `json:"streak_started_at"`
}

// ToResponse serializes the goal for API output, forcing the daily-rollover
// check so a read on a new day never shows stale progress.
func (g *Goal) ToResponse(today time.Time) GoalResponse {
	g.resetDailyProgressIfNeeded(today)

	days := g.CurrentWeekDaysCompleted
	if days == nil {
		days = []int{}
	}

	return GoalResponse{
		ID:                       g.ID.Hex(),
		Category:                 g.Category,
		DailyTarget:              g.DailyTarget,
		DailyProgress:            g.DailyProgress,
		IsDailyGoalCompleted:     g.DailyProgress >= g.DailyTarget,
		WeeklyStreak:             g.WeeklyStreak,
		CurrentWeekDaysCompleted: days,
		DaysCompletedThisWeek:    len(days),
		IsWeekCompleted:          g.IsWeekCompleted(),
		CurrentWeekStart:         formatDate(g.CurrentWeekStart),
		LastCompletedDate:        formatDate(g.LastCompletedDate),
		StreakStartedAt:          formatDate(g.StreakStartedAt),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
