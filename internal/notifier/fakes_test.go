package notifier

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/solace/internal/models"
)

type memoryStore struct {
	mu        sync.Mutex
	reminders map[string]models.Reminder
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reminders: map[string]models.Reminder{}}
}

func (m *memoryStore) SaveReminder(_ context.Context, r models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	m.reminders[r.ID] = r
	return nil
}

func (m *memoryStore) ListDueReminders(_ context.Context, now time.Time) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.reminders {
		if r.DeliveredAt == nil && !r.DueAt.After(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (m *memoryStore) MarkReminderDelivered(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.reminders[id]
	r.DeliveredAt = &at
	m.reminders[id] = r
	return nil
}

func (m *memoryStore) DeletePendingReminders(_ context.Context, kind models.ReminderKind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.reminders {
		if r.Kind == kind && r.DeliveredAt == nil {
			delete(m.reminders, id)
			n++
		}
	}
	return n, nil
}

// pending returns undelivered reminders of kind
func (m *memoryStore) pending(kind models.ReminderKind) []models.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.reminders {
		if r.Kind == kind && r.DeliveredAt == nil {
			out = append(out, r)
		}
	}
	return out
}

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) Notify(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}
