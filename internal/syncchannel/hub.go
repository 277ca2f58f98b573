package syncchannel

import (
	"encoding/json"

	"github.com/tugaskita/tugasboard/internal/task"
)

// Hub is an in-process Channel. Whatever is emitted on it reaches the
// registered handlers synchronously.
type Hub struct {
	registry
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) EmitAdded(t *task.Task) {
	h.dispatch(EventTaskAdded, t)
}

func (h *Hub) EmitUpdated(t *task.Task) {
	h.dispatch(EventTaskUpdated, t)
}

// Emit delivers a raw event payload the way it would arrive off the wire.
func (h *Hub) Emit(event string, payload json.RawMessage) {
	h.dispatchRaw(event, payload)
}

// Relay forwards everything src pushes into h until the returned func is called.
func (h *Hub) Relay(src Channel) (stop func()) {
	offAdded := src.OnTaskAdded(h.EmitAdded)
	offUpdated := src.OnTaskUpdated(h.EmitUpdated)
	return func() {
		offAdded()
		offUpdated()
	}
}
