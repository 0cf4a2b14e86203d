package postgres

import (
	"context"
	"database/sql"
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, assessment_id, activity_id, activity_name, duration_minutes,
			completed, progress, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.ID, sql.NullString{String: record.AssessmentID, Valid: record.AssessmentID != ""},
		record.ActivityID, record.ActivityName, record.DurationMinutes,
		record.Completed, record.Progress, record.Notes, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, limit, offset int) ([]models.SessionRecord, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(assessment_id, ''), activity_id, activity_name, duration_minutes,
			completed, progress, notes, created_at
		FROM sessions
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limitArg, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		if err := rows.Scan(
			&rec.ID, &rec.AssessmentID, &rec.ActivityID, &rec.ActivityName, &rec.DurationMinutes,
			&rec.Completed, &rec.Progress, &rec.Notes, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
