package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	fc "github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/monitor"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskview"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := fc.NoColor
	fc.NoColor = true
	t.Cleanup(func() { fc.NoColor = prev })
}

func TestPrintPage(t *testing.T) {
	noColor(t)
	tasks := []*task.Task{
		{ID: "7", Title: "Sapu halaman", Status: task.StatusInProgress, Priority: task.PriorityUrgent, Worker: "budi", Date: task.NewDate(2025, 11, 15)},
		{ID: "12", Title: "Cat pagar", Status: task.StatusWaiting, Worker: "siti"},
	}
	var buf bytes.Buffer
	require.NoError(t, printPage(&buf, taskview.Build(tasks, taskview.Query{Page: 1, PageSize: 12})))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID  STATUS"))
	assert.Contains(t, lines[1], "[budi]")
	assert.Contains(t, lines[1], "2025-11-15")
	// Waiting tasks do not show their worker.
	assert.NotContains(t, lines[2], "siti")
	assert.Equal(t, strings.Index(lines[0], "TITLE"), strings.Index(lines[1], "Sapu"))
	assert.Equal(t, strings.Index(lines[0], "TITLE"), strings.Index(lines[2], "Cat"))
	assert.Equal(t, "page 1 of 1, 2 tasks", lines[3])
}

func TestPrintPage_Empty(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	require.NoError(t, printPage(&buf, taskview.Build(nil, taskview.Query{Page: 1, PageSize: 12})))
	assert.Equal(t, "No tasks.\n", buf.String())
}

func TestPrintTask(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	printTask(&buf, &task.Task{ID: "3", Title: "Ganti lampu", Status: task.StatusWaiting, Description: "Lantai 2"})
	out := buf.String()
	assert.Contains(t, out, "3 Ganti lampu")
	assert.Contains(t, out, "Lantai 2")
	assert.Contains(t, out, "Can move to: Sedang Dikerjakan, Ditolak")
}

func TestPrintOverview(t *testing.T) {
	noColor(t)
	now := time.Date(2025, 11, 15, 9, 0, 0, 0, time.Local)
	o := monitor.Build([]*task.Task{
		{ID: "1", Title: "a", Status: task.StatusDone, Date: task.NewDate(2025, 11, 15)},
		{ID: "2", Title: "b", Status: task.StatusWaiting, Date: task.NewDate(2025, 11, 14)},
	}, now)
	var buf bytes.Buffer
	printOverview(&buf, o)
	out := buf.String()
	assert.Contains(t, out, "(50% done)")
	assert.Contains(t, out, "Overdue (1)")
	assert.Contains(t, out, "Due today (1)")
}

func TestAnnounce(t *testing.T) {
	noColor(t)
	e := &eventbus.Event{
		Type:      eventbus.TypeTaskUpdated,
		CreatedAt: time.Now(),
		Task:      &task.Task{ID: "4", Title: "Pel lantai", Status: task.StatusRejected, Note: "bukan jadwal"},
	}
	var buf bytes.Buffer
	announce(&buf, e, true)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\a\a"))
	assert.Contains(t, out, "Tugas ditolak Pel lantai: bukan jadwal")

	buf.Reset()
	announce(&buf, &eventbus.Event{Type: eventbus.TypeTasksReplaced}, true)
	assert.Empty(t, buf.String())
}

func TestDescribe(t *testing.T) {
	err := cerr.NewError(cerr.InvalidArgument, "after photo is required", nil).AddDetail("fotoAfter")
	assert.Equal(t, "after photo is required (fotoAfter)", describe(err))
	assert.Equal(t, "boom", describe(errors.New("boom")))
	assert.Equal(t, "API unreachable: dial tcp: refused",
		describe(cerr.NewError(cerr.Unavailable, "API unreachable", errors.New("dial tcp: refused"))))
}
