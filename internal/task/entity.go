package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is the upstream task identifier. The API emits numbers, but nothing
// here does arithmetic on it, so it is kept as its decimal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Int returns the numeric form of id for APIs that want one.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

type Task struct {
	ID          ID         `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status     `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Worker      string     `json:"dikerjakanOleh,omitempty" yaml:"worker,omitempty"`
	Date        Date       `json:"tanggalTugas" yaml:"date"`
	StartedAt   *time.Time `json:"jamMulai,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time `json:"jamSelesai,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	BeforePhoto string     `json:"fotoBefore,omitempty" yaml:"before_photo,omitempty"`
	AfterPhoto  string     `json:"fotoAfter,omitempty" yaml:"after_photo,omitempty"`
	Note        string     `json:"keteranganTugas,omitempty" yaml:"note,omitempty"`
}

// Valid reports whether t can be held by a store: it must exist and be addressable.
func (t *Task) Valid() bool {
	return t != nil && t.ID != ""
}

// ShowWorker mirrors the card rule: the worker is only meaningful while the
// task is being worked on or after it was finished.
func (t *Task) ShowWorker() bool {
	return t.Worker != "" && t.Status != StatusWaiting && t.Status != StatusRejected
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.StartedAt = cloneTime(t.StartedAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.CreatedAt = cloneTime(t.CreatedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
