package session

import (
	"sync"
	"time"
)

// Timer is a cancelable scheduled callback. Stop is idempotent.
type Timer interface {
	Stop()
}

// Clock schedules the runtime's repeating progress ticks and one-shot delays
type Clock interface {
	Every(d time.Duration, fn func()) Timer
	After(d time.Duration, fn func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by time.Ticker and time.AfterFunc
func RealClock() Clock {
	return realClock{}
}

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

func (realClock) Every(d time.Duration, fn func()) Timer {
	t := &realTicker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				fn()
			}
		}
	}()
	return t
}

type realTimer struct {
	timer *time.Timer
}

func (t realTimer) Stop() {
	t.timer.Stop()
}

func (realClock) After(d time.Duration, fn func()) Timer {
	return realTimer{timer: time.AfterFunc(d, fn)}
}
