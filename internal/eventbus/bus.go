package eventbus

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tugaskita/tugasboard/internal/task"
)

type EventType string

const (
	TypeTaskAdded         EventType = "task.added"
	TypeTaskUpdated       EventType = "task.updated"
	TypeTaskStatusChanged EventType = "task.status_changed"
	TypeTasksReplaced     EventType = "tasks.replaced"
)

// Event is a change that has already been applied to the local store.
type Event struct {
	ID        string     `json:"id"`
	Type      EventType  `json:"type"`
	TaskID    task.ID    `json:"taskId,omitempty"`
	Task      *task.Task `json:"task,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan *Event
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan *Event),
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *Bus) PublishNew(eventType EventType, t *task.Task) {
	event := &Event{
		ID:        ulid.Make().String(),
		Type:      eventType,
		CreatedAt: time.Now(),
	}
	if t != nil {
		event.TaskID = t.ID
		event.Task = t.Clone()
	}
	b.Publish(event)
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
