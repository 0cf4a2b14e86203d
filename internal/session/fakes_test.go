package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/solace/internal/catalog"
	"github.com/julianstephens/solace/internal/models"
)

// fakeClock records scheduled callbacks; tests fire them explicitly.
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTimer
	afters  []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	d       time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (c *fakeClock) Every(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn, d: d}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) After(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn, d: d}
	c.afters = append(c.afters, t)
	return t
}

// Tick fires every live ticker once
func (c *fakeClock) Tick() {
	c.mu.Lock()
	tickers := append([]*fakeTimer(nil), c.tickers...)
	c.mu.Unlock()
	for _, t := range tickers {
		if !t.isStopped() {
			t.fn()
		}
	}
}

// TickN fires live tickers n times
func (c *fakeClock) TickN(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

// liveTickers counts tickers that have not been stopped
func (c *fakeClock) liveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// lastTicker returns the most recently created ticker
func (c *fakeClock) lastTicker() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// RunNext fires the oldest pending one-shot timer. Returns false when none remain.
func (c *fakeClock) RunNext() bool {
	c.mu.Lock()
	var next *fakeTimer
	for len(c.afters) > 0 {
		t := c.afters[0]
		c.afters = c.afters[1:]
		if !t.isStopped() {
			next = t
			break
		}
	}
	c.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

// RunAll drains pending one-shot timers, including any they schedule
func (c *fakeClock) RunAll() {
	for c.RunNext() {
	}
}

type fakeGateway struct {
	mu          sync.Mutex
	sessions    []models.SessionRecord
	updates     []models.TherapyPlan
	assessments []models.StoredAssessment
	history     []models.SessionRecord
	saveErr     error
	historyErr  error
}

func (g *fakeGateway) SaveSession(_ context.Context, record models.SessionRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	g.sessions = append(g.sessions, record)
	return nil
}

func (g *fakeGateway) UpdatePlan(_ context.Context, assessmentID string, plan models.TherapyPlan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if assessmentID == "" {
		return fmt.Errorf("missing assessment id")
	}
	g.updates = append(g.updates, plan)
	return nil
}

func (g *fakeGateway) ListSessions(_ context.Context, limit, offset int) ([]models.SessionRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.historyErr != nil {
		return nil, g.historyErr
	}
	if offset >= len(g.history) {
		return nil, nil
	}
	end := offset + limit
	if end > len(g.history) {
		end = len(g.history)
	}
	return append([]models.SessionRecord(nil), g.history[offset:end]...), nil
}

func (g *fakeGateway) GetAssessments(_ context.Context) ([]models.StoredAssessment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.StoredAssessment(nil), g.assessments...), nil
}

func (g *fakeGateway) completedSessions() []models.SessionRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.SessionRecord
	for _, s := range g.sessions {
		if s.Completed {
			out = append(out, s)
		}
	}
	return out
}

func (g *fakeGateway) planUpdates() []models.TherapyPlan {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.TherapyPlan(nil), g.updates...)
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) add(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) levels() []NoticeLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []NoticeLevel
	for _, n := range l.notices {
		out = append(out, n.Level)
	}
	return out
}

func (l *noticeLog) has(level NoticeLevel) bool {
	for _, lv := range l.levels() {
		if lv == level {
			return true
		}
	}
	return false
}

// gatedGateway holds completed session saves until gate is closed
type gatedGateway struct {
	*fakeGateway
	gate    chan struct{}
	entered chan struct{}
}

func (g *gatedGateway) SaveSession(ctx context.Context, record models.SessionRecord) error {
	if record.Completed {
		select {
		case g.entered <- struct{}{}:
		default:
		}
		<-g.gate
	}
	return g.fakeGateway.SaveSession(ctx, record)
}

// retiringCatalog resolves like the built-in catalog until an id is retired
type retiringCatalog struct {
	*catalog.Catalog
	mu      sync.Mutex
	retired map[string]bool
}

func (c *retiringCatalog) retire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired == nil {
		c.retired = make(map[string]bool)
	}
	c.retired[id] = true
}

func (c *retiringCatalog) Activity(id string) (models.Activity, bool) {
	c.mu.Lock()
	gone := c.retired[id]
	c.mu.Unlock()
	if gone {
		return models.Activity{}, false
	}
	return c.Catalog.Activity(id)
}
