package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/solace/internal/catalog"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/planner"
	"github.com/julianstephens/solace/internal/scoring"
	"github.com/julianstephens/solace/internal/session"
	"github.com/julianstephens/solace/internal/therapy"
)

type memStore struct {
	mu          sync.Mutex
	assessments []models.StoredAssessment
	sessions    []models.SessionRecord
	saveErr     error
}

func (s *memStore) SaveAssessment(ctx context.Context, a models.StoredAssessment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	a.ID = fmt.Sprintf("assessment-%d", len(s.assessments)+1)
	s.assessments = append([]models.StoredAssessment{a}, s.assessments...)
	return a.ID, nil
}

func (s *memStore) GetAssessments(ctx context.Context) ([]models.StoredAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StoredAssessment(nil), s.assessments...), nil
}

func (s *memStore) UpdatePlan(ctx context.Context, id string, plan models.TherapyPlan) error {
	return nil
}

func (s *memStore) SaveSession(ctx context.Context, rec models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, rec)
	return nil
}

func (s *memStore) ListSessions(ctx context.Context, limit, offset int) ([]models.SessionRecord, error) {
	return nil, nil
}

func newTestModel(t *testing.T, store *memStore) Model {
	t.Helper()
	cat := catalog.Default()
	m := NewModel(context.Background(), Deps{
		Gateway: store,
		Catalog: cat,
		Service: therapy.NewService(store, cat.Questions, nil),
	})
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func scored(answers models.AnswerSet) scoredMsg {
	result := scoring.Compute(catalog.Default().Questions, answers, nil)
	return scoredMsg{result: result, answers: answers}
}

func TestNoAssessmentShowsWelcome(t *testing.T) {
	m := newTestModel(t, &memStore{})

	msg := m.reconcile()()
	rm, ok := msg.(reconciledMsg)
	if !ok {
		t.Fatalf("reconcile produced %T", msg)
	}
	if rm.err == nil {
		t.Fatal("expected an error with no assessment on record")
	}

	m, _ = update(t, m, rm)
	if m.Screen() != ScreenWelcome {
		t.Errorf("screen = %d, want welcome", m.Screen())
	}
	if len(m.toasts) != 0 {
		t.Errorf("a missing assessment should not raise a warning, got %+v", m.toasts)
	}
}

func TestExistingPlanShowsActivities(t *testing.T) {
	result := scoring.Compute(catalog.Default().Questions, models.AnswerSet{"anxiety_levels": "severe"}, nil)
	store := &memStore{assessments: []models.StoredAssessment{{
		ID:         "assessment-1",
		Assessment: result,
		Plan:       planner.Generate(result),
	}}}
	m := newTestModel(t, store)

	m, _ = update(t, m, m.reconcile()())
	if m.Screen() != ScreenPlan {
		t.Fatalf("screen = %d, want plan", m.Screen())
	}
	want := []string{"breathing", "mindfulness", "progressive_relaxation"}
	if fmt.Sprint(m.snapshot.Available) != fmt.Sprint(want) {
		t.Errorf("available = %v, want %v", m.snapshot.Available, want)
	}
}

func TestScoredInterviewInstallsPlan(t *testing.T) {
	store := &memStore{}
	m := newTestModel(t, store)

	msg := scored(models.AnswerSet{"anxiety_levels": "severe"})
	m, cmd := update(t, m, msg)
	if m.Screen() != ScreenSaving {
		t.Fatalf("screen = %d, want saving", m.Screen())
	}
	if cmd == nil {
		t.Fatal("expected a persist command")
	}

	m, _ = update(t, m, m.persist(msg)())
	if m.Screen() != ScreenPlan {
		t.Fatalf("screen = %d, want plan", m.Screen())
	}
	if m.snapshot.AssessmentID != "assessment-1" {
		t.Errorf("assessment id = %q", m.snapshot.AssessmentID)
	}
	if len(m.snapshot.Available) != 3 {
		t.Errorf("available = %v", m.snapshot.Available)
	}
	if len(store.assessments) != 1 {
		t.Errorf("expected one saved assessment, got %d", len(store.assessments))
	}
}

func TestUnsavedAssessmentStillShowsPlan(t *testing.T) {
	store := &memStore{saveErr: fmt.Errorf("disk full")}
	m := newTestModel(t, store)

	msg := scored(models.AnswerSet{})
	m, _ = update(t, m, msg)
	m, _ = update(t, m, m.persist(msg)())

	if m.Screen() != ScreenPlan {
		t.Fatalf("screen = %d, want plan", m.Screen())
	}
	if len(m.snapshot.Available) == 0 {
		t.Error("plan should still be usable when saving fails")
	}
	if len(m.toasts) != 1 || m.toasts[0].notice.Level != session.NoticeWarning {
		t.Errorf("expected one warning toast, got %+v", m.toasts)
	}
}

func TestEnterStartsSelectedActivity(t *testing.T) {
	store := &memStore{}
	m := newTestModel(t, store)
	msg := scored(models.AnswerSet{"anxiety_levels": "severe"})
	m, _ = update(t, m, msg)
	m, _ = update(t, m, m.persist(msg)())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	snap := m.Runtime().Snapshot()
	if snap.Phase != session.PhaseRunning || snap.ActiveActivityID != "mindfulness" {
		t.Fatalf("runtime = %s/%q, want running mindfulness", snap.Phase, snap.ActiveActivityID)
	}
	if !m.sessionActive() {
		t.Error("model should show the running session")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Runtime().Snapshot().Phase; got != session.PhaseIdle {
		t.Errorf("phase after esc = %s, want idle", got)
	}
}

func TestToastsExpire(t *testing.T) {
	m := newTestModel(t, &memStore{})

	m, cmd := update(t, m, noticeMsg(session.NewNotice(session.NoticeSuccess, "Well done!")))
	if cmd == nil {
		t.Fatal("expected expiry command")
	}
	if len(m.toasts) != 1 {
		t.Fatalf("toasts = %d, want 1", len(m.toasts))
	}
	if m.toasts[0].notice.TTL != 3*time.Second {
		t.Errorf("TTL = %v", m.toasts[0].notice.TTL)
	}

	m, _ = update(t, m, toastExpiredMsg(m.toasts[0].id))
	if len(m.toasts) != 0 {
		t.Errorf("toast not dismissed: %+v", m.toasts)
	}
}

func TestToastsAreCapped(t *testing.T) {
	m := newTestModel(t, &memStore{})
	for i := 0; i < maxVisibleToasts+2; i++ {
		m, _ = update(t, m, noticeMsg(session.NewNotice(session.NoticeInfo, fmt.Sprintf("notice %d", i))))
	}
	if len(m.toasts) != maxVisibleToasts {
		t.Fatalf("toasts = %d, want %d", len(m.toasts), maxVisibleToasts)
	}
	if m.toasts[len(m.toasts)-1].notice.Text != fmt.Sprintf("notice %d", maxVisibleToasts+1) {
		t.Errorf("newest toast missing: %+v", m.toasts)
	}
}

func TestReconcileFailureWarns(t *testing.T) {
	m := newTestModel(t, &memStore{})
	m, cmd := update(t, m, reconciledMsg{err: errors.NewPersistenceError("get_assessments", fmt.Errorf("timeout"))})
	if m.Screen() != ScreenWelcome {
		t.Errorf("screen = %d, want welcome", m.Screen())
	}
	if cmd == nil || len(m.toasts) != 1 {
		t.Errorf("expected a warning toast, got %+v", m.toasts)
	}
}

func TestRefreshRereadsRuntime(t *testing.T) {
	store := &memStore{}
	m := newTestModel(t, store)
	msg := scored(models.AnswerSet{"anxiety_levels": "severe"})
	m, _ = update(t, m, msg)
	m, _ = update(t, m, m.persist(msg)())

	m.snapshot = session.Snapshot{}
	m, cmd := update(t, m, refreshMsg{})
	if cmd == nil {
		t.Error("refresh should schedule the next refresh")
	}
	if len(m.snapshot.Available) != 3 {
		t.Errorf("available after refresh = %v", m.snapshot.Available)
	}
}
