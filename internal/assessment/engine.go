// Package assessment runs the sequential interview that feeds the scoring engine.
package assessment

import (
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/scoring"
)

type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseQuestion
	PhaseScored
)

func (p Phase) String() string {
	switch p {
	case PhaseWelcome:
		return "welcome"
	case PhaseQuestion:
		return "question"
	case PhaseScored:
		return "scored"
	default:
		return "unknown"
	}
}

// ScoredFunc receives the final assessment along with the frozen answers
type ScoredFunc func(result models.Assessment, answers models.AnswerSet)

// AdvancedFunc receives the index of the question now being asked
type AdvancedFunc func(index int)

type Options struct {
	// AdvanceDelay is the pause between recording an answer and showing the next question.
	// Zero advances synchronously.
	AdvanceDelay time.Duration
	OnScored     ScoredFunc
	OnAdvanced   AdvancedFunc
}

// DefaultOptions returns the interactive defaults
func DefaultOptions() Options {
	return Options{AdvanceDelay: constants.AnswerAdvanceDelay}
}

type Engine struct {
	mu        sync.Mutex
	questions []models.Question
	opts      Options
	phase     Phase
	index     int
	answers   models.AnswerSet
	emotion   *models.EmotionSignal
	result    *models.Assessment
	// generation invalidates pending auto-advances when the user moves first
	generation int
	timer      *time.Timer
}

func New(questions []models.Question, opts Options) *Engine {
	return &Engine{
		questions: questions,
		opts:      opts,
		answers:   make(models.AnswerSet),
	}
}

// Begin moves from the welcome screen to the first question
func (e *Engine) Begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseWelcome {
		return &errors.StateConflictError{State: e.phase.String()}
	}
	if len(e.questions) == 0 {
		return fmt.Errorf("interview has no questions")
	}
	e.phase = PhaseQuestion
	e.index = 0
	return nil
}

// SetEmotion supplies the externally detected emotion used during scoring
func (e *Engine) SetEmotion(signal *models.EmotionSignal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emotion = signal
}

// SubmitAnswer records value for the current question and schedules the advance
func (e *Engine) SubmitAnswer(questionID, value string) error {
	e.mu.Lock()

	if e.phase != PhaseQuestion {
		e.mu.Unlock()
		return &errors.StateConflictError{State: e.phase.String()}
	}
	current := e.questions[e.index]
	if current.ID != questionID {
		e.mu.Unlock()
		return &errors.ValidationError{Field: "question", Value: questionID, Reason: fmt.Sprintf("current question is %s", current.ID)}
	}
	if value == "" {
		e.mu.Unlock()
		return &errors.ValidationError{Field: "answer", Value: value, Reason: "no option selected"}
	}

	e.answers[questionID] = value
	e.generation++
	gen := e.generation
	logger.Debug("Answer recorded", "question", questionID, "value", value)

	if e.opts.AdvanceDelay <= 0 {
		scored := e.advanceLocked()
		index := e.index
		e.mu.Unlock()
		e.notify(scored, index)
		return nil
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.opts.AdvanceDelay, func() { e.advance(gen) })
	e.mu.Unlock()
	return nil
}

// Previous steps back one question, keeping recorded answers
func (e *Engine) Previous() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseQuestion || e.index == 0 {
		return false
	}
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.index--
	return true
}

func (e *Engine) advance(gen int) {
	e.mu.Lock()
	if gen != e.generation || e.phase != PhaseQuestion {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	scored := e.advanceLocked()
	index := e.index
	e.mu.Unlock()
	e.notify(scored, index)
}

// advanceLocked moves to the next question or scores the interview. Caller holds mu.
func (e *Engine) advanceLocked() *models.Assessment {
	if e.index < len(e.questions)-1 {
		e.index++
		return nil
	}

	result := scoring.Compute(e.questions, e.answers, e.emotion)
	e.result = &result
	e.phase = PhaseScored
	logger.Info("Interview scored", "score", result.Score, "severity", result.Severity)
	return e.result
}

func (e *Engine) notify(result *models.Assessment, index int) {
	if result == nil {
		if e.opts.OnAdvanced != nil {
			e.opts.OnAdvanced(index)
		}
		return
	}
	if e.opts.OnScored != nil {
		e.opts.OnScored(*result, e.Answers())
	}
}

// Phase returns the current interview phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Current returns the question being asked and its position
func (e *Engine) Current() (models.Question, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseQuestion {
		return models.Question{}, e.index, false
	}
	return e.questions[e.index], e.index, true
}

// Total returns the number of questions in the interview
func (e *Engine) Total() int {
	return len(e.questions)
}

// Answers returns a copy of the recorded answers
func (e *Engine) Answers() models.AnswerSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers.Clone()
}

// Result returns the assessment once the interview is scored
func (e *Engine) Result() (models.Assessment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return models.Assessment{}, false
	}
	return *e.result, true
}
