// Package syncchannel delivers upstream task pushes to local subscribers.
package syncchannel

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/panicerr"
)

// Push event names as emitted by the upstream server.
const (
	EventTaskAdded   = "taskAdded"
	EventTaskUpdated = "taskUpdated"
)

// Channel is a source of task pushes. Each registration returns its own
// unsubscribe func, which may be called any number of times.
type Channel interface {
	OnTaskAdded(handler func(*task.Task)) (unsubscribe func())
	OnTaskUpdated(handler func(*task.Task)) (unsubscribe func())
}

type registry struct {
	mu       sync.RWMutex
	handlers map[string]map[string]func(*task.Task)
}

func (r *registry) OnTaskAdded(handler func(*task.Task)) func() {
	return r.on(EventTaskAdded, handler)
}

func (r *registry) OnTaskUpdated(handler func(*task.Task)) func() {
	return r.on(EventTaskUpdated, handler)
}

func (r *registry) on(event string, handler func(*task.Task)) func() {
	if handler == nil {
		return func() {}
	}
	id := ulid.Make().String()
	r.mu.Lock()
	if r.handlers == nil {
		r.handlers = make(map[string]map[string]func(*task.Task))
	}
	if r.handlers[event] == nil {
		r.handlers[event] = make(map[string]func(*task.Task))
	}
	r.handlers[event][id] = handler
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.handlers[event], id)
			r.mu.Unlock()
		})
	}
}

func (r *registry) subscribers(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[event])
}

// dispatchRaw decodes an event payload and hands it to dispatch. Payloads
// that are not a task object are dropped.
func (r *registry) dispatchRaw(event string, payload json.RawMessage) {
	if len(payload) == 0 {
		slog.Debug("dropping push event without payload", "event", event)
		return
	}
	var t *task.Task
	if err := json.Unmarshal(payload, &t); err != nil {
		slog.Debug("dropping undecodable push event", "event", event, "error", err)
		return
	}
	r.dispatch(event, t)
}

func (r *registry) dispatch(event string, t *task.Task) {
	if !t.Valid() {
		slog.Debug("dropping push event without task id", "event", event)
		return
	}
	r.mu.RLock()
	handlers := make([]func(*task.Task), 0, len(r.handlers[event]))
	for _, h := range r.handlers[event] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		if err := panicerr.Call(func() { h(t.Clone()) }); err != nil {
			slog.Error("push handler panicked", "event", event, "task_id", t.ID, "error", err)
		}
	}
}
