package eventbus

import (
	"reflect"
	"sync"
)

// Handler is a function that handles an event
type Handler func(event any)

// Subscription identifies a registered handler so it can be removed later.
type Subscription struct {
	eventType reflect.Type
	id        uint64
}

type entry struct {
	id      uint64
	handler Handler
}

// EventBus provides in-process pub/sub keyed by the event's dynamic type.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]entry
	nextID   uint64
}

// New creates a new EventBus
func New() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]entry),
	}
}

// Subscribe registers a handler for the type of eventType.
// Pointer and value types are distinct keys.
func (e *EventBus) Subscribe(eventType any, handler Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reflect.TypeOf(eventType)
	e.nextID++
	e.handlers[t] = append(e.handlers[t], entry{id: e.nextID, handler: handler})
	return Subscription{eventType: t, id: e.nextID}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (e *EventBus) Unsubscribe(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.handlers[sub.eventType]
	for i, h := range list {
		if h.id != sub.id {
			continue
		}
		kept := make([]entry, 0, len(list)-1)
		kept = append(kept, list[:i]...)
		kept = append(kept, list[i+1:]...)
		if len(kept) == 0 {
			delete(e.handlers, sub.eventType)
		} else {
			e.handlers[sub.eventType] = kept
		}
		return
	}
}

// PublishSync delivers the event to every subscriber in registration order
// before returning.
func (e *EventBus) PublishSync(event any) {
	for _, h := range e.snapshot(event) {
		h(event)
	}
}

// snapshot copies the handler list so handlers may (un)subscribe while running.
func (e *EventBus) snapshot(event any) []Handler {
	if event == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := e.handlers[reflect.TypeOf(event)]
	out := make([]Handler, len(list))
	for i, h := range list {
		out[i] = h.handler
	}
	return out
}

// HasSubscribers returns true if there are subscribers for the event type
func (e *EventBus) HasSubscribers(eventType any) bool {
	return e.SubscriberCount(eventType) > 0
}

// SubscriberCount returns the number of subscribers for an event type
func (e *EventBus) SubscriberCount(eventType any) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.handlers[reflect.TypeOf(eventType)])
}
