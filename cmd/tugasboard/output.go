package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	fc "github.com/fatih/color"

	"github.com/tugaskita/tugasboard/internal/monitor"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskview"
	"github.com/tugaskita/tugasboard/pkg/color"
)

func statusColor(s task.Status) *fc.Color {
	switch s {
	case task.StatusInProgress:
		return color.Info
	case task.StatusWaiting:
		return color.Warn
	case task.StatusDone:
		return color.Success
	case task.StatusRejected:
		return color.Error
	}
	return color.Muted
}

func statusLabel(s task.Status) string {
	return statusColor(s).Sprint(s)
}

func priorityLabel(p task.Priority, width int) string {
	label := pad(string(p.OrDefault()), width)
	if p == task.PriorityUrgent {
		return color.Error.Sprint(label)
	}
	return label
}

// printPage lays the page out in fixed-width columns. Cells are padded
// before they are coloured so escape codes do not shift the columns.
func printPage(w io.Writer, page taskview.Page) error {
	if page.Total == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	idWidth, workerWidth := len("ID"), len("WORKER")
	for _, t := range page.Tasks {
		idWidth = max(idWidth, utf8.RuneCountInString(t.ID.String()))
		if t.ShowWorker() {
			workerWidth = max(workerWidth, utf8.RuneCountInString(t.Worker)+2)
		}
	}

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
		pad("ID", idWidth), pad("STATUS", statusWidth), pad("PRIORITY", priorityWidth),
		pad("DATE", len(task.DateLayout)), pad("WORKER", workerWidth), "TITLE")
	for _, t := range page.Tasks {
		worker := pad("-", workerWidth)
		if t.ShowWorker() {
			worker = color.ForName(t.Worker).Sprint(pad("["+t.Worker+"]", workerWidth))
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
			pad(t.ID.String(), idWidth),
			statusColor(t.Status).Sprint(pad(string(t.Status), statusWidth)),
			priorityLabel(t.Priority, priorityWidth),
			pad(dateOrDash(t.Date), len(task.DateLayout)),
			worker,
			t.Title)
	}
	_, err := fmt.Fprintln(w, color.Muted.Sprintf("page %d of %d, %d tasks", page.Page, page.TotalPages, page.Total))
	return err
}

const (
	statusWidth   = len(task.StatusInProgress)
	priorityWidth = len("PRIORITY")
)

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func printTask(w io.Writer, t *task.Task) {
	fmt.Fprintf(w, "%s %s\n", color.Bold.Sprint(t.ID), color.Bold.Sprint(t.Title))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "  %s\t%s\n", k, v)
		}
	}
	row("Status", statusLabel(t.Status))
	row("Priority", priorityLabel(t.Priority, 0))
	row("Date", dateOrDash(t.Date))
	if t.ShowWorker() {
		row("Worker", t.Worker)
	}
	if t.StartedAt != nil {
		row("Started", t.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.CompletedAt != nil {
		row("Finished", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	row("Description", t.Description)
	row("Note", t.Note)
	row("Before photo", t.BeforePhoto)
	row("After photo", t.AfterPhoto)
	_ = tw.Flush()

	moves := task.AllowedTransitions(t.Status)
	if len(moves) == 0 {
		return
	}
	labels := make([]string, len(moves))
	for i, s := range moves {
		labels[i] = statusLabel(s)
	}
	fmt.Fprintf(w, "  Can move to: %s\n", strings.Join(labels, ", "))
}

func printOverview(w io.Writer, o *monitor.Overview) {
	fmt.Fprintf(w, "%s %s\n", color.Bold.Sprint("Monitoring"), o.Today)
	fmt.Fprintf(w, "  total %d  active %s  done %s  rejected %s  (%d%% done)\n",
		o.Total,
		color.Info.Sprint(o.Active),
		color.Success.Sprint(o.Done),
		color.Error.Sprint(o.Rejected),
		o.PercentDone)
	printGroup(w, "Due today", o.DueToday)
	printGroup(w, "Overdue", o.Overdue)
	printGroup(w, "Upcoming", o.Upcoming)
}

func printGroup(w io.Writer, title string, tasks []*task.Task) {
	fmt.Fprintf(w, "\n%s (%d)\n", color.Bold.Sprint(title), len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(w, "  %s  %s  %s  %s\n",
			t.ID, dateOrDash(t.Date), statusLabel(t.Status), taskview.Truncate(t.Title, taskview.CardTitleLimit))
	}
}

func dateOrDash(d task.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}
