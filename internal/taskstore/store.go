package taskstore

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/task"
)

// Store is the single owner of the local task list. Every mutation goes
// through Replace, ApplyAdded, ApplyUpdated or ApplyStatusResult and is
// serialised by mu; the list is kept in canonical order after each one.
//
// Concurrent writers for the same task are not reconciled: whichever
// mutation takes the lock last wins.
type Store struct {
	mu    sync.RWMutex
	tasks []*task.Task
	bus   *eventbus.Bus
}

type Option func(*Store)

// WithEventBus publishes every effective mutation on bus.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace discards the current contents and installs list. Nil entries and
// entries without an id are dropped; when an id repeats, the later entry
// takes the earlier one's place.
func (s *Store) Replace(list []*task.Task) {
	next := make([]*task.Task, 0, len(list))
	index := make(map[task.ID]int, len(list))
	for _, t := range list {
		if !t.Valid() {
			continue
		}
		if i, ok := index[t.ID]; ok {
			next[i] = t.Clone()
			continue
		}
		index[t.ID] = len(next)
		next = append(next, t.Clone())
	}
	sortTasks(next)

	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()

	s.publish(eventbus.TypeTasksReplaced, nil)
}

// ApplyAdded inserts t unless a task with the same id is already held.
// It reports whether the store changed.
func (s *Store) ApplyAdded(t *task.Task) bool {
	if !t.Valid() {
		slog.Debug("dropping malformed taskAdded event")
		return false
	}
	s.mu.Lock()
	if s.indexOf(t.ID) >= 0 {
		s.mu.Unlock()
		slog.Debug("ignoring taskAdded for a task already held", "task_id", t.ID)
		return false
	}
	s.tasks = append(s.tasks, t.Clone())
	sortTasks(s.tasks)
	s.mu.Unlock()

	s.publish(eventbus.TypeTaskAdded, t)
	return true
}

// ApplyUpdated replaces the task with t's id. Updates for tasks that were
// never loaded are dropped.
func (s *Store) ApplyUpdated(t *task.Task) bool {
	if !t.Valid() {
		slog.Debug("dropping malformed taskUpdated event")
		return false
	}
	if !s.replaceByID(t.ID, t) {
		slog.Debug("ignoring taskUpdated for an unknown task", "task_id", t.ID)
		return false
	}
	s.publish(eventbus.TypeTaskUpdated, t)
	return true
}

// ApplyStatusResult installs the server's copy of a task after a status
// change request for id succeeded.
func (s *Store) ApplyStatusResult(id task.ID, updated *task.Task) bool {
	if id == "" || updated == nil {
		return false
	}
	if updated.ID != "" && updated.ID != id {
		slog.Warn("status result names a different task", "task_id", id, "result_id", updated.ID)
		return false
	}
	t := updated.Clone()
	t.ID = id
	if !s.replaceByID(id, t) {
		return false
	}
	s.publish(eventbus.TypeTaskStatusChanged, t)
	return true
}

func (s *Store) replaceByID(id task.ID, t *task.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks[i] = t.Clone()
	sortTasks(s.tasks)
	return true
}

// Snapshot returns a copy of the ordered task list.
func (s *Store) Snapshot() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Get(id task.ID) (*task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.tasks[i].Clone(), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id task.ID) int {
	return slices.IndexFunc(s.tasks, func(t *task.Task) bool { return t.ID == id })
}

func (s *Store) publish(eventType eventbus.EventType, t *task.Task) {
	if s.bus == nil {
		return
	}
	s.bus.PublishNew(eventType, t)
}

// sortTasks orders by status rank; equal ranks keep their current relative order.
func sortTasks(tasks []*task.Task) {
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		return a.Status.Rank() - b.Status.Rank()
	})
}
