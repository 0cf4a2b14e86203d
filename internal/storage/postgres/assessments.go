package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/models"
)

const assessmentColumns = `id, created_at, answers, emotion, score, severity,
	risk_factors, detected_disorders, recommendations, therapy_plan`

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
	// JSON goes over the wire as text; lib/pq would send []byte as bytea
	var emotionJSON *string
	if a.Emotion != nil {
		b, err := json.Marshal(a.Emotion)
		if err != nil {
			return "", fmt.Errorf("failed to marshal emotion: %w", err)
		}
		str := string(b)
		emotionJSON = &str
	}
	planJSON, err := json.Marshal(a.Plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (`+assessmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		a.ID, a.CreatedAt, string(answersJSON), emotionJSON, a.Assessment.Score, string(a.Assessment.Severity),
		pq.Array(nonNil(a.Assessment.RiskFactors)),
		pq.Array(nonNil(a.Assessment.DetectedDisorders)),
		pq.Array(nonNil(a.Assessment.Recommendations)),
		string(planJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert assessment: %w", err)
	}
	return a.ID, nil
}

func (s *Store) GetAssessment(ctx context.Context, id string) (models.StoredAssessment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assessmentColumns+" FROM assessments WHERE id = $1", id)
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
	rows, err := s.db.QueryContext(ctx, "SELECT "+assessmentColumns+" FROM assessments ORDER BY created_at DESC")
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

	res, err := s.db.ExecContext(ctx, "UPDATE assessments SET therapy_plan = $1 WHERE id = $2", string(planJSON), assessmentID)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assessment %s: %w", assessmentID, errors.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (models.StoredAssessment, error) {
	var a models.StoredAssessment
	var severity string
	var answersJSON, emotionJSON, planJSON []byte

	err := row.Scan(
		&a.ID, &a.CreatedAt, &answersJSON, &emotionJSON, &a.Assessment.Score, &severity,
		pq.Array(&a.Assessment.RiskFactors),
		pq.Array(&a.Assessment.DetectedDisorders),
		pq.Array(&a.Assessment.Recommendations),
		&planJSON,
	)
	if err != nil {
		return models.StoredAssessment{}, err
	}
	a.Assessment.Severity = models.Severity(severity)

	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if len(emotionJSON) > 0 {
		a.Emotion = &models.EmotionSignal{}
		if err := json.Unmarshal(emotionJSON, a.Emotion); err != nil {
			return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal emotion: %w", err)
		}
	}
	if err := json.Unmarshal(planJSON, &a.Plan); err != nil {
		return models.StoredAssessment{}, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
