package taskstore

import (
	"sync"

	"github.com/tugaskita/tugasboard/internal/syncchannel"
	"github.com/tugaskita/tugasboard/internal/task"
)

// Bind feeds ch's events into s. The returned teardown detaches both
// handlers; calling it more than once is harmless.
func Bind(s *Store, ch syncchannel.Channel) (teardown func()) {
	offAdded := ch.OnTaskAdded(func(t *task.Task) { s.ApplyAdded(t) })
	offUpdated := ch.OnTaskUpdated(func(t *task.Task) { s.ApplyUpdated(t) })

	var once sync.Once
	return func() {
		once.Do(func() {
			offAdded()
			offUpdated()
		})
	}
}
