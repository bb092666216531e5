package session

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Do after the loop has stopped.
var ErrClosed = errors.New("session closed")

// Loop runs posted functions one at a time on a single goroutine. Every
// mutation of session state goes through it.
type Loop struct {
	events chan func()
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop. Call Run to start it.
func NewLoop() *Loop {
	return &Loop{
		events: make(chan func()),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run processes events until Stop is called.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-l.quit:
			return
		}
	}
}

// Post hands fn to the loop. It blocks until the loop accepts fn and
// returns false if the loop stopped first. Never call it from the loop.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.events <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	<-finished
	return nil
}

// Stop ends the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
