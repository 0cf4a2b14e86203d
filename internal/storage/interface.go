// Package storage defines the persistence gateway shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"context"
	"time"

	"github.com/julianstephens/solace/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Assessments
	// SaveAssessment stores a new assessment and its plan and returns the assigned id.
	// A blank ID is filled with a fresh uuid.
	SaveAssessment(ctx context.Context, a models.StoredAssessment) (string, error)
	GetAssessment(ctx context.Context, id string) (models.StoredAssessment, error)
	// GetAssessments returns every assessment, most recent first
	GetAssessments(ctx context.Context) ([]models.StoredAssessment, error)
	UpdatePlan(ctx context.Context, assessmentID string, plan models.TherapyPlan) error

	// Sessions
	SaveSession(ctx context.Context, record models.SessionRecord) error
	// ListSessions pages through session records, most recent first
	ListSessions(ctx context.Context, limit, offset int) ([]models.SessionRecord, error)

	// Reminders
	SaveReminder(ctx context.Context, r models.Reminder) error
	ListReminders(ctx context.Context) ([]models.Reminder, error)
	// ListDueReminders returns undelivered reminders with due_at at or before now, oldest first
	ListDueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
	MarkReminderDelivered(ctx context.Context, id string, at time.Time) error
	// DeletePendingReminders removes undelivered reminders of kind and returns how many were removed
	DeletePendingReminders(ctx context.Context, kind models.ReminderKind) (int, error)

	// Utils
	GetConfigPath() string
}
