package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/models"
)

// Tuesday
var schedNow = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

func testSettings() models.Settings {
	return models.Settings{
		NotificationsEnabled: true,
		ReminderTime:         "09:00",
		WeeklyCheckDay:       "sunday",
		SessionPacing:        constants.PacingReal,
	}
}

func TestScheduleDailyReminders(t *testing.T) {
	store := newMemoryStore()
	s := NewScheduler(store, testSettings()).WithClock(func() time.Time { return schedNow })

	plan := models.TherapyPlan{Activities: []string{"breathing", "cbt"}, DailyActivities: []string{"breathing", "cbt"}}
	if err := s.ScheduleDailyReminders(context.Background(), plan); err != nil {
		t.Fatalf("ScheduleDailyReminders() error: %v", err)
	}

	pending := store.pending(models.ReminderDaily)
	if len(pending) != 1 {
		t.Fatalf("pending daily reminders = %d, want 1", len(pending))
	}
	r := pending[0]
	// 09:00 has already passed today
	want := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	if !r.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", r.DueAt, want)
	}
	if r.Recurrence != models.RecurrenceDaily {
		t.Errorf("Recurrence = %s", r.Recurrence)
	}
	if !strings.Contains(r.Message, "2 activities") {
		t.Errorf("Message = %q", r.Message)
	}

	// Rescheduling replaces rather than duplicates
	if err := s.ScheduleDailyReminders(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if n := len(store.pending(models.ReminderDaily)); n != 1 {
		t.Errorf("pending after reschedule = %d, want 1", n)
	}
}

func TestScheduleWeeklyProgressCheck(t *testing.T) {
	store := newMemoryStore()
	s := NewScheduler(store, testSettings()).WithClock(func() time.Time { return schedNow })

	if err := s.ScheduleWeeklyProgressCheck(context.Background()); err != nil {
		t.Fatalf("ScheduleWeeklyProgressCheck() error: %v", err)
	}
	pending := store.pending(models.ReminderWeekly)
	if len(pending) != 1 {
		t.Fatalf("pending weekly = %d", len(pending))
	}
	want := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	if !pending[0].DueAt.Equal(want) || pending[0].DueAt.Weekday() != time.Sunday {
		t.Errorf("DueAt = %v, want %v", pending[0].DueAt, want)
	}
}

func TestScheduleWeeklyRejectsBadDay(t *testing.T) {
	settings := testSettings()
	settings.WeeklyCheckDay = "someday"
	s := NewScheduler(newMemoryStore(), settings)
	if err := s.ScheduleWeeklyProgressCheck(context.Background()); err == nil {
		t.Error("expected error for invalid weekday")
	}
}

func TestSchedulePlanCompletionCelebration(t *testing.T) {
	store := newMemoryStore()
	s := NewScheduler(store, testSettings()).WithClock(func() time.Time { return schedNow })

	if err := s.SchedulePlanCompletionCelebration(context.Background(), 30); err != nil {
		t.Fatal(err)
	}
	pending := store.pending(models.ReminderCelebration)
	if len(pending) != 1 {
		t.Fatalf("pending = %d", len(pending))
	}
	want := time.Date(2024, 4, 11, 9, 0, 0, 0, time.UTC)
	if !pending[0].DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", pending[0].DueAt, want)
	}
	if pending[0].Recurrence != models.RecurrenceNone {
		t.Errorf("Recurrence = %s", pending[0].Recurrence)
	}
	if err := s.SchedulePlanCompletionCelebration(context.Background(), 0); err == nil {
		t.Error("expected error for zero-day plan")
	}
}

func TestSchedulingSkippedWhenDisabled(t *testing.T) {
	store := newMemoryStore()
	settings := testSettings()
	settings.NotificationsEnabled = false
	s := NewScheduler(store, settings)

	if err := s.ScheduleAll(context.Background(), models.TherapyPlan{Activities: []string{"gratitude"}}); err != nil {
		t.Fatalf("ScheduleAll() error: %v", err)
	}
	if len(store.reminders) != 0 {
		t.Errorf("reminders scheduled while disabled: %d", len(store.reminders))
	}
}

func TestScheduleAllAttemptsEveryKind(t *testing.T) {
	store := newMemoryStore()
	settings := testSettings()
	settings.WeeklyCheckDay = "never"
	s := NewScheduler(store, settings).WithClock(func() time.Time { return schedNow })

	err := s.ScheduleAll(context.Background(), models.TherapyPlan{Activities: []string{"gratitude"}})
	if err == nil || !strings.Contains(err.Error(), "weekly") {
		t.Errorf("ScheduleAll() error = %v, want weekly failure", err)
	}
	if len(store.pending(models.ReminderDaily)) != 1 || len(store.pending(models.ReminderCelebration)) != 1 {
		t.Error("a failing kind prevented the others from being scheduled")
	}
}
