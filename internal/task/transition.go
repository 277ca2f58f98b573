package task

import (
	"fmt"
	"strings"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

// StatusChange is a worker's request to move a task to another status.
type StatusChange struct {
	TaskID     ID
	To         Status
	Username   string
	AfterPhoto *Photo
	Remark     string
}

var transitions = map[Status][]Status{
	StatusWaiting:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusDone},
}

// AllowedTransitions lists the statuses a task in from may move to.
// Done and Rejected are terminal.
func AllowedTransitions(from Status) []Status {
	return append([]Status(nil), transitions[from]...)
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks everything that can be checked before a request
// is sent: the move must be offered for the task's current status and the
// required evidence must be attached.
func ValidateTransition(from Status, c StatusChange) error {
	if c.TaskID == "" {
		return cerr.NewError(cerr.InvalidArgument, "task id is required", nil)
	}
	if strings.TrimSpace(c.Username) == "" {
		return cerr.NewError(cerr.Unauthenticated, "login required to change a task status", nil)
	}
	if !CanTransition(from, c.To) {
		return cerr.NewError(cerr.FailedPrecondition,
			fmt.Sprintf("cannot move task from %q to %q", from, c.To), nil)
	}
	switch c.To {
	case StatusDone:
		if c.AfterPhoto == nil || len(c.AfterPhoto.Data) == 0 {
			return cerr.NewError(cerr.InvalidArgument, "after photo is required", nil).AddDetail("fotoAfter")
		}
		if strings.TrimSpace(c.Remark) == "" {
			return cerr.NewError(cerr.InvalidArgument, "remark is required", nil).AddDetail("keteranganTugas")
		}
	case StatusRejected:
		if strings.TrimSpace(c.Remark) == "" {
			return cerr.NewError(cerr.InvalidArgument, "rejection reason is required", nil).AddDetail("keteranganTugas")
		}
	}
	return nil
}
