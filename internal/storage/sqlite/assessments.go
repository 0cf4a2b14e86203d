package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/models"
)

const assessmentColumns = `id, created_at, answers, emotion, assessment, therapy_plan`

func (s *Store) SaveAssessment(ctx context.Context, a models.StoredAssessment) (string, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.Plan.AssessmentID = a.ID

	answersJSON, err := json.Marshal(a.Answers)
	if err != nil {
		return "", fmt.Errorf("failed to marshal answers: %w", err)
	}
	var emotionJSON *string
	if a.Emotion != nil {
		b, err := json.Marshal(a.Emotion)
		if err != nil {
			return "", fmt.Errorf("failed to marshal emotion: %w", err)
		}
		str := string(b)
		emotionJSON = &str
	}
	assessmentJSON, err := json.Marshal(a.Assessment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal assessment: %w", err)
	}
	planJSON, err := json.Marshal(a.Plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, created_at, answers, emotion, score, severity, assessment, therapy_plan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, formatTime(a.CreatedAt), string(answersJSON), emotionJSON,
		a.Assessment.Score, string(a.Assessment.Severity), string(assessmentJSON), string(planJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert assessment: %w", err)
	}
	return a.ID, nil
}

func (s *Store) GetAssessment(ctx context.Context, id string) (models.StoredAssessment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assessmentColumns+" FROM assessments WHERE id = ?", id)
	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return models.StoredAssessment{}, fmt.Errorf("assessment %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

func (s *Store) GetAssessments(ctx context.Context) ([]models.StoredAssessment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+assessmentColumns+" FROM assessments ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var out []models.StoredAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePlan(ctx context.Context, assessmentID string, plan models.TherapyPlan) error {
	plan.AssessmentID = assessmentID
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "UPDATE assessments SET therapy_plan = ? WHERE id = ?", string(planJSON), assessmentID)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assessment %s: %w", assessmentID, errors.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (models.StoredAssessment, error) {
	var a models.StoredAssessment
	var createdAt, answersJSON, assessmentJSON, planJSON string
	var emotionJSON sql.NullString

	if err := row.Scan(&a.ID, &createdAt, &answersJSON, &emotionJSON, &assessmentJSON, &planJSON); err != nil {
		return models.StoredAssessment{}, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	a.CreatedAt = t

	if err := json.Unmarshal([]byte(answersJSON), &a.Answers); err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if emotionJSON.Valid {
		a.Emotion = &models.EmotionSignal{}
		if err := json.Unmarshal([]byte(emotionJSON.String), a.Emotion); err != nil {
			return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal emotion: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(assessmentJSON), &a.Assessment); err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal assessment: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), &a.Plan); err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return a, nil
}
