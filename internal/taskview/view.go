package taskview

import (
	"strings"
	"unicode/utf8"

	"github.com/tugaskita/tugasboard/internal/task"
)

// Query is everything the dashboard needs to derive what is on screen.
type Query struct {
	Search   string
	Range    DateRange
	Page     int
	PageSize int
}

type Page struct {
	Tasks      []*task.Task `json:"tasks"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
}

// Build filters and paginates tasks in one pass. Page is clamped into
// [1, TotalPages] so a shrinking list never leaves the user past the end.
func Build(tasks []*task.Task, q Query) Page {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	filtered := Filter(tasks, q.Search, q.Range)
	pages := TotalPages(len(filtered), size)
	page := min(max(q.Page, 1), pages)
	return Page{
		Tasks:      Paginate(filtered, size, page),
		Page:       page,
		TotalPages: pages,
		Total:      len(filtered),
	}
}

// Truncate shortens s to limit runes, appending "..." when it cut something.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "..."
}

const (
	CardTitleLimit       = 30
	CardDescriptionLimit = 160
)

// ForCard returns a copy of t shortened for a task card.
func ForCard(t *task.Task) *task.Task {
	c := t.Clone()
	c.Title = Truncate(c.Title, CardTitleLimit)
	c.Description = Truncate(c.Description, CardDescriptionLimit)
	return c
}
