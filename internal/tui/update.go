package tui

import (
	stderrors "errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/session"
)

const maxVisibleToasts = 3

type reconciledMsg struct {
	err error
}

type persistedMsg struct {
	stored models.StoredAssessment
	err    error
}

type toastExpiredMsg int

type refreshMsg struct{}

func refresh() tea.Cmd {
	return tea.Tick(constants.PlanRefreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m Model) reconcile() tea.Cmd {
	return func() tea.Msg {
		return reconciledMsg{err: m.runtime.Reconcile(m.ctx)}
	}
}

func (m Model) persist(msg scoredMsg) tea.Cmd {
	return func() tea.Msg {
		stored, err := m.service.Persist(m.ctx, msg.answers, m.emotion, msg.result)
		return persistedMsg{stored: stored, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case reconciledMsg:
		return m.handleReconciled(msg)

	case snapshotMsg:
		m.snapshot = session.Snapshot(msg)
		m.clampCursor()
		return m, m.events.listen()

	case noticeMsg:
		cmd := m.pushToast(session.Notice(msg))
		return m, tea.Batch(cmd, m.events.listen())

	case toastExpiredMsg:
		m.dropToast(int(msg))
		return m, nil

	case refreshMsg:
		if m.screen == ScreenPlan {
			m.snapshot = m.runtime.Snapshot()
			m.clampCursor()
		}
		return m, refresh()

	case advancedMsg:
		m.waiting = false
		cmd := m.questionForm()
		return m, tea.Batch(cmd, m.events.listen())

	case scoredMsg:
		m.waiting = false
		m.form = nil
		m.screen = ScreenSaving
		result := msg.result
		m.assessment = &result
		return m, tea.Batch(m.persist(msg), m.events.listen())

	case persistedMsg:
		return m.handlePersisted(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Quit) && (m.screen != ScreenInterview || msg.String() == "ctrl+c") {
			m.quitting = true
			m.runtime.Cancel()
			return m, tea.Quit
		}
	}

	switch m.screen {
	case ScreenWelcome:
		return m.updateWelcome(msg)
	case ScreenInterview:
		return m.updateInterview(msg)
	case ScreenPlan:
		return m.updatePlan(msg)
	}
	return m, nil
}

func (m Model) handleReconciled(msg reconciledMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.snapshot = m.runtime.Snapshot()
		if m.retake {
			m.screen = ScreenWelcome
		} else {
			m.screen = ScreenPlan
		}
		return m, nil
	}

	m.screen = ScreenWelcome
	if stderrors.Is(msg.err, errors.ErrNotFound) {
		return m, nil
	}
	logger.Warn("Failed to restore plan", "error", msg.err)
	return m, m.pushToast(session.NewNotice(session.NoticeWarning, "Couldn't load your saved plan. You can take the assessment to start a new one."))
}

func (m Model) handlePersisted(msg persistedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg.err != nil {
		cmd = m.pushToast(session.NewNotice(session.NoticeWarning, "Your assessment couldn't be saved. This plan will only last until you quit."))
	}
	if err := m.runtime.SetPlan(msg.stored.ID, msg.stored.Plan); err != nil {
		logger.Warn("Failed to install plan", "error", err)
	}
	m.snapshot = m.runtime.Snapshot()
	m.cursor = 0
	m.retake = false
	m.screen = ScreenPlan
	return m, cmd
}

func (m Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Enter):
		if err := m.engine.Begin(); err != nil {
			logger.Warn("Failed to begin interview", "error", err)
			return m, nil
		}
		m.screen = ScreenInterview
		return m, m.questionForm()
	case key.Matches(keyMsg, m.keys.Back) && m.snapshot.AssessmentID != "":
		m.screen = ScreenPlan
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateInterview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Back) {
		if m.engine.Previous() {
			m.waiting = false
			return m, m.questionForm()
		}
		return m, nil
	}
	if m.form == nil || m.waiting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		q, _, ok := m.engine.Current()
		if !ok {
			return m, cmd
		}
		if err := m.engine.SubmitAnswer(q.ID, *m.answer); err != nil {
			logger.Warn("Answer rejected", "question", q.ID, "error", err)
			return m, m.questionForm()
		}
		m.waiting = true
	case huh.StateAborted:
		m.quitting = true
		m.runtime.Cancel()
		return m, tea.Quit
	}
	return m, cmd
}

// questionForm builds a single-select form for the question being asked,
// preselecting any answer already recorded for it
func (m *Model) questionForm() tea.Cmd {
	q, idx, ok := m.engine.Current()
	if !ok {
		m.form = nil
		return nil
	}

	answer := m.engine.Answers()[q.ID]
	m.answer = &answer

	options := make([]huh.Option[string], 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, huh.NewOption(o.Label, o.Value))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(q.Prompt).
				Description(questionCounter(idx, m.engine.Total())).
				Options(options...).
				Value(m.answer),
		),
	).WithShowHelp(false)
	return m.form.Init()
}

func (m Model) updatePlan(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.sessionActive() {
		switch {
		case key.Matches(keyMsg, m.keys.Finish):
			m.runtime.Complete()
		case key.Matches(keyMsg, m.keys.Back):
			m.runtime.Cancel()
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.snapshot.Available)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Enter):
		return m.startSelected()
	case key.Matches(keyMsg, m.keys.Retake):
		m.engine = m.newEngine()
		m.retake = true
		m.screen = ScreenWelcome
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) startSelected() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.snapshot.Available) {
		return m, nil
	}
	id := m.snapshot.Available[m.cursor]
	err := m.runtime.Start(id)
	if err == nil {
		m.snapshot = m.runtime.Snapshot()
		return m, nil
	}

	var conflict *errors.StateConflictError
	if stderrors.As(err, &conflict) {
		return m, nil
	}
	logger.Warn("Failed to start activity", "activity_id", id, "error", err)
	return m, m.pushToast(session.NewNotice(session.NoticeWarning, "That activity isn't available right now."))
}

func (m *Model) pushToast(n session.Notice) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, notice: n})
	if len(m.toasts) > maxVisibleToasts {
		m.toasts = m.toasts[len(m.toasts)-maxVisibleToasts:]
	}
	return tea.Tick(n.TTL, func(time.Time) tea.Msg {
		return toastExpiredMsg(id)
	})
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.snapshot.Available) {
		m.cursor = len(m.snapshot.Available) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
