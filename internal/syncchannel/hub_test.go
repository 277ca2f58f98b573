package syncchannel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tugaskita/tugasboard/internal/task"
)

func TestHub_DispatchAndUnsubscribe(t *testing.T) {
	h := NewHub()
	var got []task.ID
	off := h.OnTaskAdded(func(tk *task.Task) { got = append(got, tk.ID) })

	h.EmitAdded(&task.Task{ID: "1", Title: "a"})
	h.EmitAdded(nil)
	h.EmitAdded(&task.Task{Title: "missing id"})
	h.Emit(EventTaskAdded, json.RawMessage(`{"id":2,"title":"b"}`))
	h.Emit(EventTaskAdded, json.RawMessage(`null`))
	h.Emit(EventTaskAdded, json.RawMessage(`[1,2]`))
	h.Emit(EventTaskAdded, nil)
	assert.Equal(t, []task.ID{"1", "2"}, got)

	off()
	off()
	h.EmitAdded(&task.Task{ID: "3"})
	assert.Len(t, got, 2)
	assert.Zero(t, h.subscribers(EventTaskAdded))
}

func TestHub_HandlersGetTheirOwnCopy(t *testing.T) {
	h := NewHub()
	h.OnTaskUpdated(func(tk *task.Task) { tk.Title = "mutated" })
	var seen string
	h.OnTaskUpdated(func(tk *task.Task) { seen = tk.Title })

	orig := &task.Task{ID: "1", Title: "orig"}
	h.EmitUpdated(orig)
	assert.Equal(t, "orig", orig.Title)
	assert.Equal(t, "orig", seen)
}

func TestHub_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	h := NewHub()
	h.OnTaskAdded(func(*task.Task) { panic("boom") })
	calls := 0
	h.OnTaskAdded(func(*task.Task) { calls++ })

	assert.NotPanics(t, func() { h.EmitAdded(&task.Task{ID: "1"}) })
	assert.Equal(t, 1, calls)
}

func TestHub_Relay(t *testing.T) {
	upstream := NewHub()
	h := NewHub()
	var got []task.ID
	h.OnTaskUpdated(func(tk *task.Task) { got = append(got, tk.ID) })

	stop := h.Relay(upstream)
	upstream.EmitUpdated(&task.Task{ID: "9"})
	stop()
	upstream.EmitUpdated(&task.Task{ID: "10"})
	assert.Equal(t, []task.ID{"9"}, got)
}

func TestHub_NilHandler(t *testing.T) {
	h := NewHub()
	off := h.OnTaskAdded(nil)
	assert.NotPanics(t, off)
	assert.NotPanics(t, func() { h.EmitAdded(&task.Task{ID: "1"}) })
}
