package monitor

import (
	"math"
	"time"

	"github.com/tugaskita/tugasboard/internal/task"
)

// Overview is the aggregate shown on the monitoring screen.
type Overview struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Today       task.Date `json:"today"`

	Total    int `json:"total"`
	Active   int `json:"active"`
	Done     int `json:"done"`
	Rejected int `json:"rejected"`
	// PercentDone is rounded to a whole percent and is 0 for an empty list.
	PercentDone int `json:"percentDone"`

	DueToday []*task.Task `json:"dueToday"`
	Overdue  []*task.Task `json:"overdue"`
	Upcoming []*task.Task `json:"upcoming"`
}

// Build summarises tasks relative to now's calendar day. Tasks without a
// date are counted but belong to no group.
func Build(tasks []*task.Task, now time.Time) *Overview {
	today := task.DateOf(now)
	o := &Overview{
		GeneratedAt: now,
		Today:       today,
		DueToday:    []*task.Task{},
		Overdue:     []*task.Task{},
		Upcoming:    []*task.Task{},
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		o.Total++
		switch {
		case t.Status == task.StatusDone:
			o.Done++
		case t.Status == task.StatusRejected:
			o.Rejected++
		case t.Status.Active():
			o.Active++
		}

		if t.Date.IsZero() {
			continue
		}
		switch {
		case t.Date.Equal(today):
			o.DueToday = append(o.DueToday, t)
		case t.Date.Before(today):
			if t.Status != task.StatusDone {
				o.Overdue = append(o.Overdue, t)
			}
		default:
			o.Upcoming = append(o.Upcoming, t)
		}
	}
	if o.Total > 0 {
		o.PercentDone = int(math.Round(float64(o.Done) / float64(o.Total) * 100))
	}
	return o
}
