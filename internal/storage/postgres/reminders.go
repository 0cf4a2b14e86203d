package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/models"
)

const reminderColumns = `id, kind, message, due_at, recurrence, delivered_at`

func (s *Store) SaveReminder(ctx context.Context, r models.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Recurrence == "" {
		r.Recurrence = models.RecurrenceNone
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			message = EXCLUDED.message,
			due_at = EXCLUDED.due_at,
			recurrence = EXCLUDED.recurrence,
			delivered_at = EXCLUDED.delivered_at
	`, r.ID, string(r.Kind), r.Message, r.DueAt, string(r.Recurrence), r.DeliveredAt)
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

func (s *Store) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	return s.queryReminders(ctx, "SELECT "+reminderColumns+" FROM reminders ORDER BY due_at ASC")
}

func (s *Store) ListDueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	return s.queryReminders(ctx, `
		SELECT `+reminderColumns+` FROM reminders
		WHERE delivered_at IS NULL AND due_at <= $1
		ORDER BY due_at ASC
	`, now)
}

func (s *Store) MarkReminderDelivered(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE reminders SET delivered_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder delivered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reminder %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

func (s *Store) DeletePendingReminders(ctx context.Context, kind models.ReminderKind) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE kind = $1 AND delivered_at IS NULL", string(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to delete reminders: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) queryReminders(ctx context.Context, query string, args ...any) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var r models.Reminder
		var kind, recurrence string
		var deliveredAt *time.Time
		if err := rows.Scan(&r.ID, &kind, &r.Message, &r.DueAt, &recurrence, &deliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.Kind = models.ReminderKind(kind)
		r.Recurrence = models.ReminderRecurrence(recurrence)
		r.DeliveredAt = deliveredAt
		out = append(out, r)
	}
	return out, rows.Err()
}
