package tmigo

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// EventEmitter provides event handling capabilities
type EventEmitter struct {
	mu           sync.RWMutex
	events       map[string][]EventHandler
	maxListeners int
}

// NewEventEmitter creates a new EventEmitter
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		events:       make(map[string][]EventHandler),
		maxListeners: 0,
	}
}

// SetMaxListeners sets the maximum number of listeners per event (0 = unlimited)
func (e *EventEmitter) SetMaxListeners(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxListeners = n
}

// On registers an event listener
func (e *EventEmitter) On(eventType string, listener EventHandler) *EventEmitter {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.events[eventType] == nil {
		e.events[eventType] = []EventHandler{}
	}

	if e.maxListeners > 0 && len(e.events[eventType]) >= e.maxListeners {
		// Past the cap the listener is not added; nothing is logged and
		// no error is returned.
		return e
	}

	e.events[eventType] = append(e.events[eventType], listener)
	return e
}

// Once registers a one-time event listener
func (e *EventEmitter) Once(eventType string, listener EventHandler) *EventEmitter {
	var onceListener EventHandler
	onceListener = func(args ...any) {
		e.RemoveListener(eventType, onceListener)
		listener(args...)
	}
	return e.On(eventType, onceListener)
}

// Emit triggers an event with the given arguments. A zero-listener "error"
// event is not swallowed: it panics with the emitted error (or a generic
// uncaught-error if none was given), surfacing unhandled failures the way
// the original's emit() raises them (SPEC_FULL.md §4.D).
func (e *EventEmitter) Emit(eventType string, args ...any) bool {
	e.mu.RLock()
	listeners, exists := e.events[eventType]
	e.mu.RUnlock()

	if !exists || len(listeners) == 0 {
		if eventType == "error" {
			panic(uncaughtError(args))
		}
		return false
	}

	// Create a copy to avoid issues with listeners that remove themselves
	listenersCopy := make([]EventHandler, len(listeners))
	copy(listenersCopy, listeners)

	for _, listener := range listenersCopy {
		listener(args...)
	}

	return true
}

// uncaughtError builds the error to panic with when "error" is emitted with
// no listeners registered.
func uncaughtError(args []any) error {
	if len(args) == 0 {
		return errors.New(`tmigo: uncaught "error" event`)
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return fmt.Errorf("tmigo: uncaught \"error\" event: %v", args[0])
}

// Emits triggers multiple events with corresponding argument sets
func (e *EventEmitter) Emits(types []string, values [][]any) {
	for i, eventType := range types {
		var val []any
		if i < len(values) {
			val = values[i]
		} else if len(values) > 0 {
			val = values[len(values)-1]
		}
		e.Emit(eventType, val...)
	}
}

// RemoveListener removes the listeners for eventType whose code pointer
// matches listener's, leaving listeners made from other functions or
// function literals untouched.
//
// Go func values are not comparable with ==, so listeners are matched by the
// underlying code pointer via reflect.ValueOf(fn).Pointer(). Closures created
// from the same function literal share that pointer and are removed
// together. This includes the wrappers Once registers: every Once listener on
// an event matches every other, and none of them matches the fn that was
// passed to Once; see DESIGN.md.
func (e *EventEmitter) RemoveListener(eventType string, listener EventHandler) *EventEmitter {
	e.mu.Lock()
	defer e.mu.Unlock()

	listeners, exists := e.events[eventType]
	if !exists {
		return e
	}

	target := reflect.ValueOf(listener).Pointer()
	filtered := make([]EventHandler, 0, len(listeners))
	for _, l := range listeners {
		if reflect.ValueOf(l).Pointer() == target {
			continue
		}
		filtered = append(filtered, l)
	}

	if len(filtered) == 0 {
		delete(e.events, eventType)
	} else {
		e.events[eventType] = filtered
	}

	return e
}

// RemoveAllListeners removes all listeners for an event type, or all events if no type specified
func (e *EventEmitter) RemoveAllListeners(eventType ...string) *EventEmitter {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(eventType) == 0 {
		e.events = make(map[string][]EventHandler)
	} else {
		delete(e.events, eventType[0])
	}

	return e
}

// Listeners returns all listeners for an event type
func (e *EventEmitter) Listeners(eventType string) []EventHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listeners, exists := e.events[eventType]
	if !exists {
		return []EventHandler{}
	}

	// Return a copy
	result := make([]EventHandler, len(listeners))
	copy(result, listeners)
	return result
}

// ListenerCount returns the number of listeners for an event type
func (e *EventEmitter) ListenerCount(eventType string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listeners, exists := e.events[eventType]
	if !exists {
		return 0
	}

	return len(listeners)
}

// AddListener is an alias for On
func (e *EventEmitter) AddListener(eventType string, listener EventHandler) *EventEmitter {
	return e.On(eventType, listener)
}

// Off is an alias for RemoveListener
func (e *EventEmitter) Off(eventType string, listener EventHandler) *EventEmitter {
	return e.RemoveListener(eventType, listener)
}
