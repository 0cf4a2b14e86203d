package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
)

// Sender shows one notification
type Sender interface {
	Notify(ctx context.Context, text string) error
}

// Dispatcher delivers due reminders and re-arms recurring ones
type Dispatcher struct {
	store  ReminderStore
	sender Sender
	now    func() time.Time
}

func NewDispatcher(store ReminderStore, sender Sender) *Dispatcher {
	return &Dispatcher{store: store, sender: sender, now: time.Now}
}

// WithClock overrides the dispatcher's notion of now
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// DeliverDue sends every undelivered reminder whose due time has passed. It stops at
// the first send failure so the remaining reminders stay pending for the next run.
func (d *Dispatcher) DeliverDue(ctx context.Context) (int, error) {
	now := d.now()
	due, err := d.store.ListDueReminders(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	delivered := 0
	for _, r := range due {
		if err := d.sender.Notify(ctx, r.Message); err != nil {
			return delivered, fmt.Errorf("failed to deliver reminder %s: %w", r.ID, err)
		}
		if err := d.store.MarkReminderDelivered(ctx, r.ID, now); err != nil {
			return delivered, err
		}
		delivered++
		logger.Info("Reminder delivered", "id", r.ID, "kind", r.Kind)

		if next, ok := nextOccurrence(r, now); ok {
			if err := d.store.SaveReminder(ctx, next); err != nil {
				return delivered, fmt.Errorf("failed to re-arm reminder %s: %w", r.ID, err)
			}
		}
	}
	return delivered, nil
}

// nextOccurrence returns the first repeat of r due after now, skipping any
// occurrences missed while nothing was dispatching.
func nextOccurrence(r models.Reminder, now time.Time) (models.Reminder, bool) {
	due, ok := r.Next()
	if !ok {
		return models.Reminder{}, false
	}
	step := models.Reminder{Recurrence: r.Recurrence, DueAt: due}
	for !step.DueAt.After(now) {
		step.DueAt, _ = step.Next()
	}
	return models.Reminder{
		Kind:       r.Kind,
		Message:    r.Message,
		DueAt:      step.DueAt,
		Recurrence: r.Recurrence,
	}, true
}
