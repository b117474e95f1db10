// Package diag carries the free-text diagnostic events emitted by the
// instrumented transport while an exchange is in flight.
//
// Events travel through a dedicated logrus logger. A Stream is installed on
// that logger as a hook, so every diagnostic line written by the transport is
// also delivered, synchronously and on the emitting goroutine, to every
// registered Listener. Listeners must therefore be safe for concurrent use.
package diag

import (
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// FieldSource is the logrus field holding the emitting component.
	FieldSource = "source"
	// FieldRequestID is the logrus field holding the correlation key.
	FieldRequestID = "request_id"
)

// Event is one diagnostic line.
type Event struct {
	Source    string
	Message   string
	RequestID string
	Time      time.Time
}

// Listener receives diagnostic events.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent calls f(e).
func (f ListenerFunc) OnEvent(e Event) { f(e) }

type registration struct {
	id       uint64
	listener Listener
}

// Stream fans diagnostic log entries out to listeners.
type Stream struct {
	logger *logrus.Logger

	mu        sync.RWMutex
	listeners []registration
	nextID    uint64
}

// NewStream creates a stream backed by its own logger. The logger discards
// its formatted output until SetOutput is called on it.
func NewStream() *Stream {
	s := &Stream{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.TraceLevel)
	logger.AddHook(s)
	s.logger = logger
	return s
}

// Logger returns the logger diagnostic events are written to.
func (s *Stream) Logger() *logrus.Logger {
	return s.logger
}

// Register adds a listener and returns a function that removes it again.
func (s *Stream) Register(l Listener) (unregister func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, registration{id: id, listener: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, r := range s.listeners {
				if r.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit writes one diagnostic line for the given correlation key.
func (s *Stream) Emit(requestID, source, message string) {
	s.logger.WithFields(logrus.Fields{
		FieldSource:    source,
		FieldRequestID: requestID,
	}).Debug(message)
}

// Levels implements logrus.Hook.
func (s *Stream) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (s *Stream) Fire(entry *logrus.Entry) error {
	ev := Event{
		Message: entry.Message,
		Time:    entry.Time,
	}
	if v, ok := entry.Data[FieldSource].(string); ok {
		ev.Source = v
	}
	if v, ok := entry.Data[FieldRequestID].(string); ok {
		ev.RequestID = v
	}

	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	for i, r := range s.listeners {
		listeners[i] = r.listener
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l.OnEvent(ev)
	}
	return nil
}

var (
	defaultStream *Stream
	defaultOnce   sync.Once
)

// Default returns the process-wide stream, creating it on first use.
func Default() *Stream {
	defaultOnce.Do(func() {
		defaultStream = NewStream()
	})
	return defaultStream
}

// Register adds a listener to the process-wide stream.
func Register(l Listener) (unregister func()) {
	return Default().Register(l)
}

// Logger returns the logger of the process-wide stream.
func Logger() *logrus.Logger {
	return Default().Logger()
}

// Emit writes to the process-wide stream.
func Emit(requestID, source, message string) {
	Default().Emit(requestID, source, message)
}

// Emitter binds a stream to one correlation key.
type Emitter struct {
	stream    *Stream
	requestID string
}

// NewEmitter returns an emitter tagging every event with requestID. A nil
// stream means the process-wide one.
func NewEmitter(stream *Stream, requestID string) *Emitter {
	if stream == nil {
		stream = Default()
	}
	return &Emitter{stream: stream, requestID: requestID}
}

// Emit writes one event.
func (e *Emitter) Emit(source, message string) {
	e.stream.Emit(e.requestID, source, message)
}

// RequestID returns the correlation key the emitter tags events with.
func (e *Emitter) RequestID() string {
	return e.requestID
}
