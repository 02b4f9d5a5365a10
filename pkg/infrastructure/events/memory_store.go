package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// InMemoryEventStore keeps every published event in process and fans them
// out to subscribers. Handlers run synchronously, in publish order, outside
// the store lock.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	wildcard    []EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	logger      *zap.Logger
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	s.mutex.Lock()
	eventWithVersion := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	handlers := s.handlersFor(event.Type())
	s.mutex.Unlock()

	s.notify(handlers, eventWithVersion)
	return nil
}

// Publish appends the event to its own stream. Failures are logged.
func (s *InMemoryEventStore) Publish(event Event) {
	if event == nil {
		return
	}
	if err := s.AppendEvent(event.StreamID(), event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", event.Type()), zap.Error(err))
	}
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

// Subscribe registers handler for the given types. An empty list subscribes
// to every type.
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(eventTypes) == 0 {
		s.wildcard = append(s.wildcard, handler)
		return nil
	}
	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		s.subscribers[eventType] = without(handlers, handler)
	}
	s.wildcard = without(s.wildcard, handler)

	return nil
}

func without(handlers []EventHandler, handler EventHandler) []EventHandler {
	kept := make([]EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if !sameHandler(h, handler) {
			kept = append(kept, h)
		}
	}
	return kept
}

// sameHandler compares handlers without panicking on func-backed ones.
func sameHandler(a, b EventHandler) bool {
	if _, ok := a.(HandlerFunc); ok {
		return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
	}
	if _, ok := b.(HandlerFunc); ok {
		return false
	}
	return a == b
}

func (s *InMemoryEventStore) handlersFor(eventType string) []EventHandler {
	handlers := make([]EventHandler, 0, len(s.subscribers[eventType])+len(s.wildcard))
	handlers = append(handlers, s.subscribers[eventType]...)
	handlers = append(handlers, s.wildcard...)
	return handlers
}

func (s *InMemoryEventStore) notify(handlers []EventHandler, event Event) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		s.safeHandle(handler, event)
	}
}

func (s *InMemoryEventStore) safeHandle(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event handler panicked",
				zap.String("type", event.Type()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := handler.Handle(event); err != nil {
		s.logger.Warn("error handling event", zap.String("type", event.Type()), zap.Error(err))
	}
}
