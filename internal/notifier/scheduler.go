// Package notifier schedules practice reminders and delivers them through the
// desktop tray app.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/storage"
)

// ReminderStore is the slice of storage.Provider the scheduler and dispatcher use
type ReminderStore interface {
	SaveReminder(ctx context.Context, r models.Reminder) error
	ListDueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
	MarkReminderDelivered(ctx context.Context, id string, at time.Time) error
	DeletePendingReminders(ctx context.Context, kind models.ReminderKind) (int, error)
}

// Scheduler turns a plan into persisted reminders. Rescheduling a kind replaces
// its undelivered reminders.
type Scheduler struct {
	store    ReminderStore
	settings models.Settings
	now      func() time.Time
}

func NewScheduler(store ReminderStore, settings models.Settings) *Scheduler {
	return &Scheduler{store: store, settings: settings, now: time.Now}
}

// WithClock overrides the scheduler's notion of now
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) ScheduleDailyReminders(ctx context.Context, plan models.TherapyPlan) error {
	if !s.settings.NotificationsEnabled {
		logger.Debug("Notifications disabled, skipping daily reminders")
		return nil
	}
	due, err := s.nextAt(s.now())
	if err != nil {
		return err
	}

	n := len(plan.DailyActivities)
	if n == 0 {
		n = len(plan.Activities)
	}
	msg := fmt.Sprintf("Time for today's practice: %d %s in your plan.", n, plural(n, "activity", "activities"))
	return s.replace(ctx, models.Reminder{
		Kind:       models.ReminderDaily,
		Message:    msg,
		DueAt:      due,
		Recurrence: models.RecurrenceDaily,
	})
}

func (s *Scheduler) ScheduleWeeklyProgressCheck(ctx context.Context) error {
	if !s.settings.NotificationsEnabled {
		logger.Debug("Notifications disabled, skipping weekly check")
		return nil
	}
	weekday, ok := storage.ParseWeekday(s.settings.WeeklyCheckDay)
	if !ok {
		return fmt.Errorf("invalid weekly check day %q", s.settings.WeeklyCheckDay)
	}
	due, err := s.nextAt(s.now())
	if err != nil {
		return err
	}
	for due.Weekday() != weekday {
		due = due.AddDate(0, 0, 1)
	}
	return s.replace(ctx, models.Reminder{
		Kind:       models.ReminderWeekly,
		Message:    "Weekly check-in: take a moment to review how your week went.",
		DueAt:      due,
		Recurrence: models.RecurrenceWeekly,
	})
}

// SchedulePlanCompletionCelebration fires once, days after today at the reminder time
func (s *Scheduler) SchedulePlanCompletionCelebration(ctx context.Context, days int) error {
	if !s.settings.NotificationsEnabled {
		return nil
	}
	if days <= 0 {
		return fmt.Errorf("invalid plan length %d", days)
	}
	due, err := s.at(s.now().AddDate(0, 0, days))
	if err != nil {
		return err
	}
	return s.replace(ctx, models.Reminder{
		Kind:       models.ReminderCelebration,
		Message:    fmt.Sprintf("You've reached the end of your %d-day plan. Time to celebrate your progress!", days),
		DueAt:      due,
		Recurrence: models.RecurrenceNone,
	})
}

// ScheduleAll schedules the three reminder kinds for a newly saved plan. Every
// kind is attempted; the first error is returned.
func (s *Scheduler) ScheduleAll(ctx context.Context, plan models.TherapyPlan) error {
	var first error
	steps := []struct {
		name string
		fn   func() error
	}{
		{"daily reminders", func() error { return s.ScheduleDailyReminders(ctx, plan) }},
		{"weekly progress check", func() error { return s.ScheduleWeeklyProgressCheck(ctx) }},
		{"plan completion", func() error { return s.SchedulePlanCompletionCelebration(ctx, constants.PlanDurationDays) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			logger.Warn("Failed to schedule notification", "kind", step.name, "error", err)
			if first == nil {
				first = fmt.Errorf("schedule %s: %w", step.name, err)
			}
		}
	}
	return first
}

func (s *Scheduler) replace(ctx context.Context, r models.Reminder) error {
	if _, err := s.store.DeletePendingReminders(ctx, r.Kind); err != nil {
		return err
	}
	if err := s.store.SaveReminder(ctx, r); err != nil {
		return err
	}
	logger.Info("Reminder scheduled", "kind", r.Kind, "due_at", r.DueAt.Format(time.RFC3339))
	return nil
}

// at returns day's date at the configured reminder time
func (s *Scheduler) at(day time.Time) (time.Time, error) {
	tod, err := time.Parse(constants.TimeFormat, s.settings.ReminderTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder time %q: %w", s.settings.ReminderTime, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, day.Location()), nil
}

// nextAt returns the first reminder-time instant strictly after now
func (s *Scheduler) nextAt(now time.Time) (time.Time, error) {
	due, err := s.at(now)
	if err != nil {
		return time.Time{}, err
	}
	if !due.After(now) {
		due = due.AddDate(0, 0, 1)
	}
	return due, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
