// Package therapy ties the interview result to a persisted plan: it scores the
// answers, generates the plan, stores both and schedules reminders once.
package therapy

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/planner"
	"github.com/julianstephens/solace/internal/scoring"
)

// Store is the persistence the onboarding pipeline needs
type Store interface {
	SaveAssessment(ctx context.Context, a models.StoredAssessment) (string, error)
	GetAssessments(ctx context.Context) ([]models.StoredAssessment, error)
}

// Scheduler arms the reminders for a freshly saved plan
type Scheduler interface {
	ScheduleAll(ctx context.Context, plan models.TherapyPlan) error
}

type Service struct {
	store     Store
	questions []models.Question
	scheduler Scheduler
	now       func() time.Time
}

// NewService builds the pipeline. scheduler may be nil when notifications are off.
func NewService(store Store, questions []models.Question, scheduler Scheduler) *Service {
	return &Service{store: store, questions: questions, scheduler: scheduler, now: time.Now}
}

// Onboard scores answers and persists the resulting assessment and plan
func (s *Service) Onboard(ctx context.Context, answers models.AnswerSet, emotion *models.EmotionSignal) (models.StoredAssessment, error) {
	result := scoring.Compute(s.questions, answers, emotion)
	return s.Persist(ctx, answers, emotion, result)
}

// Persist generates a plan for an already scored assessment and saves both.
// When the save fails the unsaved result is still returned along with a
// PersistenceError, so the caller can run the plan locally.
func (s *Service) Persist(ctx context.Context, answers models.AnswerSet, emotion *models.EmotionSignal, result models.Assessment) (models.StoredAssessment, error) {
	plan := planner.Generate(result)
	stored := models.StoredAssessment{
		CreatedAt:  s.now(),
		Answers:    answers.Clone(),
		Emotion:    emotion,
		Assessment: result,
		Plan:       plan,
	}

	id, err := s.store.SaveAssessment(ctx, stored)
	if err != nil {
		logger.Warn("Failed to save assessment", "error", err)
		return stored, errors.NewPersistenceError("save_assessment", err)
	}
	stored.ID = id
	stored.Plan.AssessmentID = id
	logger.Info("Assessment saved", "assessment_id", id, "severity", result.Severity, "activities", len(plan.Activities))

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleAll(ctx, stored.Plan); err != nil {
			logger.Warn("Reminder scheduling incomplete", "assessment_id", id, "error", err)
		}
	}
	return stored, nil
}

// LoadLatest returns the most recent assessment, or an error wrapping ErrNotFound
func (s *Service) LoadLatest(ctx context.Context) (models.StoredAssessment, error) {
	all, err := s.store.GetAssessments(ctx)
	if err != nil {
		return models.StoredAssessment{}, errors.NewPersistenceError("get_assessments", err)
	}
	if len(all) == 0 {
		return models.StoredAssessment{}, fmt.Errorf("no assessment on record, run 'solace assess' first: %w", errors.ErrNotFound)
	}
	return all[0], nil
}
