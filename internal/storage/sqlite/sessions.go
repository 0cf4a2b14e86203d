package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/solace/internal/models"
)

func (s *Store) SaveSession(ctx context.Context, record models.SessionRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	var assessmentID *string
	if record.AssessmentID != "" {
		assessmentID = &record.AssessmentID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, assessment_id, activity_id, activity_name, duration_minutes,
			completed, progress, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID, assessmentID, record.ActivityID, record.ActivityName, record.DurationMinutes,
		record.Completed, record.Progress, record.Notes, formatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, limit, offset int) ([]models.SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(assessment_id, ''), activity_id, activity_name, duration_minutes,
			completed, progress, notes, created_at
		FROM sessions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.AssessmentID, &rec.ActivityID, &rec.ActivityName, &rec.DurationMinutes,
			&rec.Completed, &rec.Progress, &rec.Notes, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		t, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		rec.CreatedAt = t
		out = append(out, rec)
	}
	return out, rows.Err()
}
