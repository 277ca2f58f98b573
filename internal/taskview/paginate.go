package taskview

import "github.com/tugaskita/tugasboard/internal/task"

const DefaultPageSize = 12

// TotalPages is ceil(n/pageSize) but never less than 1, so an empty list
// still has a (blank) first page.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return max(pages(n, pageSize), 1)
}

// pages is ceil(n/size) without the n+size-1 overflow.
func pages(n, size int) int {
	if n <= 0 {
		return 0
	}
	return (n-1)/size + 1
}

// Paginate returns the 1-based page of list. Pages past the end are empty;
// page numbers below 1 are treated as 1.
func Paginate(list []*task.Task, pageSize, page int) []*task.Task {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if page > pages(len(list), pageSize) {
		return []*task.Task{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(list)-start)
	return list[start:end]
}
