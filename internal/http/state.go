package http

import "sync"

// State is the lifecycle position of one exchange.
type State int

const (
	StateIdle State = iota
	StateBuilt
	StateSending
	StateAwaitingResponse
	StateReadingBody
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateBuilt:            "built",
	StateSending:          "sending",
	StateAwaitingResponse: "awaiting_response",
	StateReadingBody:      "reading_body",
	StateDone:             "done",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// exchange tracks the state of one call to Client.Do. Transitions only move
// forward; the transport may race the caller to StateAwaitingResponse.
type exchange struct {
	mu    sync.Mutex
	state State
	hook  func(State)
}

func (e *exchange) current() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// advance steps through every state between the current one and to.
func (e *exchange) advance(to State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Terminal() || to <= e.state || to == StateFailed {
		return
	}
	for e.state < to {
		e.state++
		if e.hook != nil {
			e.hook(e.state)
		}
	}
}

func (e *exchange) fail() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Terminal() || e.state == StateIdle {
		return
	}
	e.state = StateFailed
	if e.hook != nil {
		e.hook(StateFailed)
	}
}
