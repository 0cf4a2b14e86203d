package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/session"
)

const eventBuffer = 64

type snapshotMsg session.Snapshot

type noticeMsg session.Notice

type advancedMsg int

type scoredMsg struct {
	result  models.Assessment
	answers models.AnswerSet
}

// eventBus carries callbacks fired on runtime and engine goroutines into the
// Bubble Tea loop. Sends never block once the bus is closed.
type eventBus struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

func newEventBus() *eventBus {
	return &eventBus{
		ch:   make(chan tea.Msg, eventBuffer),
		done: make(chan struct{}),
	}
}

func (b *eventBus) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

func (b *eventBus) snapshot(s session.Snapshot) { b.send(snapshotMsg(s)) }

func (b *eventBus) notice(n session.Notice) { b.send(noticeMsg(n)) }

func (b *eventBus) advanced(index int) { b.send(advancedMsg(index)) }

func (b *eventBus) scored(result models.Assessment, answers models.AnswerSet) {
	b.send(scoredMsg{result: result, answers: answers})
}

// listen waits for the next event
func (b *eventBus) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *eventBus) close() {
	b.once.Do(func() { close(b.done) })
}
