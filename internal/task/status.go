package task

import (
	"fmt"
	"strings"
)

// Status values are the upstream wire strings.
type Status string

const (
	StatusWaiting    Status = "Menunggu"
	StatusInProgress Status = "Sedang Dikerjakan"
	StatusDone       Status = "Selesai"
	StatusRejected   Status = "Ditolak"
)

// RankUnknown sorts unrecognised statuses after every known one.
const RankUnknown = 99

var statusRank = map[Status]int{
	StatusInProgress: 1,
	StatusWaiting:    2,
	StatusDone:       3,
	StatusRejected:   4,
}

// Rank orders tasks so actionable work surfaces first.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return RankUnknown
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Active is true for statuses that still need a worker.
func (s Status) Active() bool {
	return s == StatusWaiting || s == StatusInProgress
}

var statusAliases = map[string]Status{
	"waiting":     StatusWaiting,
	"in_progress": StatusInProgress,
	"in-progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"done":        StatusDone,
	"rejected":    StatusRejected,
}

// ParseStatus accepts the wire value or an English alias such as "in_progress".
func ParseStatus(s string) (Status, error) {
	if st := Status(s); st.Valid() {
		return st, nil
	}
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Priority string

const (
	PriorityNormal Priority = "Biasa"
	PriorityMedium Priority = "Sedang"
	PriorityUrgent Priority = "Urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityMedium, PriorityUrgent:
		return true
	}
	return false
}

// OrDefault returns p, or PriorityNormal when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityNormal
	}
	return p
}
