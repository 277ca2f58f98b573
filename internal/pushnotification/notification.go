package pushnotification

import (
	"fmt"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/task"
)

// Level is the cue attached to a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
	Level Level  `json:"level"`
}

// FromEvent describes a store event to a person. ok is false for events
// nobody is notified about.
func FromEvent(e *eventbus.Event) (payload *NotificationPayload, ok bool) {
	if e == nil || e.Task == nil {
		return nil, false
	}
	t := e.Task
	p := &NotificationPayload{
		URL: "/api/tasks/" + t.ID.String(),
		Tag: t.ID.String(),
	}
	switch e.Type {
	case eventbus.TypeTaskAdded:
		p.Title = "Tugas baru"
		p.Body = t.Title
		p.Level = LevelInfo
	case eventbus.TypeTaskUpdated, eventbus.TypeTaskStatusChanged:
		p.Title = "Status tugas diperbarui"
		p.Body = fmt.Sprintf("%s: %s", t.Title, t.Status)
		p.Level = LevelSuccess
		if t.Status == task.StatusRejected {
			p.Title = "Tugas ditolak"
			p.Level = LevelError
			if t.Note != "" {
				p.Body = fmt.Sprintf("%s: %s", t.Title, t.Note)
			}
		}
	default:
		return nil, false
	}
	return p, true
}
