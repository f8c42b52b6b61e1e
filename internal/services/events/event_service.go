package events

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/interfaces"
)

// Service is an in-process pub/sub bus for assessment progress events.
// Handlers run on the publisher's goroutine; they must not block.
type Service struct {
	logger   arbor.ILogger
	mu       sync.RWMutex
	nextID   int
	handlers map[int]interfaces.EventHandler
}

// NewService creates the event bus
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger:   logger,
		handlers: make(map[int]interfaces.EventHandler),
	}
}

// Publish delivers the event to all current subscribers. A missing
// timestamp is stamped at publish time.
func (s *Service) Publish(event interfaces.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.mu.RLock()
	handlers := make([]interfaces.EventHandler, 0, len(s.handlers))
	for _, handler := range s.handlers {
		handlers = append(handlers, handler)
	}
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}

	s.logger.Trace().
		Str("type", string(event.Type)).
		Str("request_id", event.RequestID).
		Msg("Event published")
}

// Subscribe registers a handler and returns its unsubscribe function
func (s *Service) Subscribe(handler interfaces.EventHandler) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}
