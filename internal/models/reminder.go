package models

import "time"

type ReminderKind string

const (
	ReminderDaily       ReminderKind = "daily_practice"
	ReminderWeekly      ReminderKind = "weekly_progress"
	ReminderCelebration ReminderKind = "plan_completion"
)

type ReminderRecurrence string

const (
	RecurrenceNone   ReminderRecurrence = "none"
	RecurrenceDaily  ReminderRecurrence = "daily"
	RecurrenceWeekly ReminderRecurrence = "weekly"
)

type Reminder struct {
	ID          string             `json:"id"`
	Kind        ReminderKind       `json:"kind"`
	Message     string             `json:"message"`
	DueAt       time.Time          `json:"due_at"`
	Recurrence  ReminderRecurrence `json:"recurrence"`
	DeliveredAt *time.Time         `json:"delivered_at,omitempty"`
}

// Next returns the following occurrence of a recurring reminder, or false if it does not recur
func (r Reminder) Next() (time.Time, bool) {
	switch r.Recurrence {
	case RecurrenceDaily:
		return r.DueAt.AddDate(0, 0, 1), true
	case RecurrenceWeekly:
		return r.DueAt.AddDate(0, 0, 7), true
	default:
		return time.Time{}, false
	}
}
