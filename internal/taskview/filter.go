package taskview

import (
	"strings"

	"github.com/tugaskita/tugasboard/internal/task"
)

// DateRange is an inclusive day range. It only filters when both ends are set.
type DateRange struct {
	Start task.Date
	End   task.Date
}

func (r DateRange) Active() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

func (r DateRange) Contains(d task.Date) bool {
	if !r.Active() {
		return true
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

// Filter keeps the tasks whose title contains search (case-insensitive) and
// whose date falls in rng. Tasks without a title never match. The input
// order is preserved.
func Filter(tasks []*task.Task, search string, rng DateRange) []*task.Task {
	needle := strings.ToLower(search)
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || t.Title == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		if rng.Active() && (t.Date.IsZero() || !rng.Contains(t.Date)) {
			continue
		}
		out = append(out, t)
	}
	return out
}
