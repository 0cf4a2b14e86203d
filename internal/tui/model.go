// Package tui is the interactive front end: the intake interview, the list of
// today's activities and the running session view.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/solace/internal/assessment"
	"github.com/julianstephens/solace/internal/catalog"
	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/session"
	"github.com/julianstephens/solace/internal/therapy"
)

type Screen int

const (
	ScreenLoading Screen = iota
	ScreenWelcome
	ScreenInterview
	ScreenSaving
	ScreenPlan
)

// Deps are the collaborators the front end drives
type Deps struct {
	Gateway session.Gateway
	Catalog *catalog.Catalog
	Service *therapy.Service
	// Pacing overrides the session tick pacing (constants.PacingReal or PacingFast)
	Pacing string
	// Emotion is the externally detected signal applied when the interview is scored
	Emotion *models.EmotionSignal
	// Retake starts with the interview even when a plan already exists
	Retake bool
	// Clock overrides the runtime clock in tests
	Clock session.Clock
}

type toast struct {
	id     int
	notice session.Notice
}

type Model struct {
	ctx      context.Context
	catalog  *catalog.Catalog
	service  *therapy.Service
	runtime  *session.Runtime
	engine   *assessment.Engine
	events   *eventBus
	emotion  *models.EmotionSignal
	retake   bool
	screen   Screen
	keys     KeyMap
	help     help.Model
	progress progress.Model
	form     *huh.Form
	answer   *string
	// waiting is set between submitting an answer and the engine moving on
	waiting    bool
	snapshot   session.Snapshot
	assessment *models.Assessment
	cursor     int
	toasts     []toast
	toastSeq   int
	quitting   bool
	width      int
	height     int
}

func NewModel(ctx context.Context, deps Deps) Model {
	events := newEventBus()
	rt := session.New(deps.Gateway, deps.Catalog, session.Options{
		Pacing:   deps.Pacing,
		Clock:    deps.Clock,
		OnChange: events.snapshot,
		OnNotice: events.notice,
	})

	m := Model{
		ctx:      ctx,
		catalog:  deps.Catalog,
		service:  deps.Service,
		runtime:  rt,
		events:   events,
		emotion:  deps.Emotion,
		retake:   deps.Retake,
		screen:   ScreenLoading,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
	m.engine = m.newEngine()
	return m
}

func (m Model) newEngine() *assessment.Engine {
	e := assessment.New(m.catalog.Questions, assessment.Options{
		AdvanceDelay: constants.AnswerAdvanceDelay,
		OnScored:     m.events.scored,
		OnAdvanced:   m.events.advanced,
	})
	e.SetEmotion(m.emotion)
	return e
}

// Runtime exposes the session runtime driven by the model
func (m Model) Runtime() *session.Runtime {
	return m.runtime
}

// Screen returns the screen currently shown
func (m Model) Screen() Screen {
	return m.screen
}

// Close stops event delivery, cancels any running session and waits for
// background writes. Call it after the program exits.
func (m Model) Close() {
	m.events.close()
	m.runtime.Close()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.screen {
	case ScreenWelcome:
		keys = append(keys, m.keys.Enter)
	case ScreenInterview:
		keys = append(keys, m.keys.Back)
	case ScreenPlan:
		if m.sessionActive() {
			keys = append(keys, m.keys.Finish, m.keys.Back)
		} else {
			keys = append(keys, m.keys.Enter, m.keys.Retake)
		}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Back}
	actions := []key.Binding{m.keys.Finish, m.keys.Retake}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.events.listen(), m.reconcile(), refresh())
}

func (m Model) sessionActive() bool {
	return m.snapshot.Phase == session.PhaseRunning || m.snapshot.Phase == session.PhaseCompleting
}

func (m Model) activityTitle(id string) string {
	if a, ok := m.catalog.Activity(id); ok {
		return a.Title
	}
	return id
}
