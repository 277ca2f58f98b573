package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tugaskita/tugasboard/internal/importwatch"
	"github.com/tugaskita/tugasboard/internal/monitor"
	"github.com/tugaskita/tugasboard/internal/session"
	"github.com/tugaskita/tugasboard/internal/spreadsheet"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskview"
	"github.com/tugaskita/tugasboard/pkg/cerr"
	"github.com/tugaskita/tugasboard/pkg/color"
)

func (c *cli) login(ctx context.Context, username, password string) error {
	api, err := c.newClient("")
	if err != nil {
		return err
	}
	res, err := api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := c.sessions.Save(ctx, &session.Session{
		Username:   res.User.Username,
		Token:      res.Token,
		LoggedInAt: c.now().UTC(),
	}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Logged in as %s\n", color.Bold.Sprint(res.User.Username))
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	if err := c.sessions.Delete(ctx); err != nil && !cerr.IsCode(err, cerr.NotFound) {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

type listOptions struct {
	search   string
	from, to string
	page     int
	full     bool
	offline  bool
}

func (c *cli) list(ctx context.Context, opts listOptions) error {
	q := taskview.Query{Search: opts.search, Page: opts.page, PageSize: c.env.PageSize}
	var err error
	if q.Range.Start, err = parseDateFlag("from", opts.from); err != nil {
		return err
	}
	if q.Range.End, err = parseDateFlag("to", opts.to); err != nil {
		return err
	}
	_, store, err := c.loadOnline(ctx, opts.offline)
	if err != nil {
		return err
	}
	page := taskview.Build(store.Snapshot(), q)
	if !opts.full {
		for i, t := range page.Tasks {
			page.Tasks[i] = taskview.ForCard(t)
		}
	}
	return printPage(c.out, page)
}

func (c *cli) show(ctx context.Context, id string, offline bool) error {
	_, store, err := c.loadOnline(ctx, offline)
	if err != nil {
		return err
	}
	t, ok := store.Get(task.ID(id))
	if !ok {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("task %s not found", id), nil)
	}
	printTask(c.out, t)
	return nil
}

func (c *cli) monitor(ctx context.Context, offline bool) error {
	_, store, err := c.loadOnline(ctx, offline)
	if err != nil {
		return err
	}
	printOverview(c.out, monitor.Build(store.Snapshot(), c.now()))
	return nil
}

func (c *cli) report(ctx context.Context, out string, offline bool) error {
	_, store, err := c.loadOnline(ctx, offline)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := monitor.WriteReport(&buf, monitor.Build(store.Snapshot(), c.now())); err != nil {
		return err
	}
	return c.writeOutput(out, buf.Bytes())
}

func (c *cli) start(ctx context.Context, id string) error {
	return c.changeStatus(ctx, task.StatusChange{TaskID: task.ID(id), To: task.StatusInProgress})
}

func (c *cli) reject(ctx context.Context, id, reason string) error {
	return c.changeStatus(ctx, task.StatusChange{TaskID: task.ID(id), To: task.StatusRejected, Remark: reason})
}

func (c *cli) done(ctx context.Context, id, photoPath, remark string) error {
	photo, err := task.LoadPhoto(photoPath)
	if err != nil {
		return err
	}
	return c.changeStatus(ctx, task.StatusChange{
		TaskID:     task.ID(id),
		To:         task.StatusDone,
		AfterPhoto: photo,
		Remark:     remark,
	})
}

// changeStatus sends change for the logged-in user against the freshly
// fetched copy of the task. The snapshot is updated only once the server
// confirms the new status.
func (c *cli) changeStatus(ctx context.Context, change task.StatusChange) error {
	sess, err := session.Current(ctx, c.sessions)
	if err != nil {
		return err
	}
	change.Username = sess.Username

	api, store, err := c.loadOnline(ctx, false)
	if err != nil {
		return err
	}
	current, ok := store.Get(change.TaskID)
	if !ok {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("task %s not found", change.TaskID), nil)
	}
	updated, err := api.UpdateStatus(ctx, current, change)
	if err != nil {
		return err
	}
	if updated != nil && store.ApplyStatusResult(change.TaskID, updated) {
		if err := c.snapshots.Save(ctx, store); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "Task %s is now %s\n", change.TaskID, statusLabel(change.To))
	return nil
}

type createOptions struct {
	title, description string
	priority           string
	date               string
	photo              string
}

func (c *cli) create(ctx context.Context, opts createOptions) error {
	n := task.NewTask{
		Title:       opts.title,
		Description: opts.description,
		Priority:    task.Priority(opts.priority),
		Date:        task.DateOf(c.now()),
	}
	if opts.date != "" {
		d, err := parseDateFlag("date", opts.date)
		if err != nil {
			return err
		}
		n.Date = d
	}
	if opts.photo != "" {
		photo, err := task.LoadPhoto(opts.photo)
		if err != nil {
			return err
		}
		n.BeforePhoto = photo
	}
	api, err := c.client(ctx)
	if err != nil {
		return err
	}
	created, err := api.CreateTask(ctx, n)
	if err != nil {
		return err
	}
	if created != nil {
		fmt.Fprintf(c.out, "Created task %s: %s\n", created.ID, created.Title)
		return nil
	}
	fmt.Fprintf(c.out, "Created task: %s\n", n.Title)
	return nil
}

func (c *cli) importWorkbook(ctx context.Context, path, defaultPriority string) error {
	prio := task.Priority(c.env.ImportEnv.DefaultPriority)
	if defaultPriority != "" {
		prio = task.Priority(defaultPriority)
	}
	api, err := c.client(ctx)
	if err != nil {
		return err
	}
	created, failed, skipped, err := importwatch.ImportFile(ctx, api, path, prio)
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "import failed", err)
	}
	fmt.Fprintf(c.out, "%s created, %s failed, %d skipped\n",
		color.Success.Sprint(created), failedCount(failed), skipped)
	if failed > 0 {
		return cerr.NewError(cerr.Aborted, fmt.Sprintf("%d of %d rows were rejected", failed, created+failed), nil)
	}
	return nil
}

func failedCount(n int) string {
	if n == 0 {
		return "0"
	}
	return color.Error.Sprint(n)
}

func (c *cli) template(out string) error {
	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf); err != nil {
		return err
	}
	return c.writeOutput(out, buf.Bytes())
}

type exportOptions struct {
	out      string
	search   string
	from, to string
	noPhotos bool
	offline  bool
}

func (c *cli) export(ctx context.Context, opts exportOptions) error {
	var rng taskview.DateRange
	var err error
	if rng.Start, err = parseDateFlag("from", opts.from); err != nil {
		return err
	}
	if rng.End, err = parseDateFlag("to", opts.to); err != nil {
		return err
	}
	api, store, err := c.loadOnline(ctx, opts.offline)
	if err != nil {
		return err
	}
	var fetcher spreadsheet.PhotoFetcher
	if !opts.noPhotos && !opts.offline {
		fetcher = api
	}
	tasks := taskview.Filter(store.Snapshot(), opts.search, rng)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	var buf bytes.Buffer
	if err := spreadsheet.Export(ctx, &buf, tasks, fetcher); err != nil {
		return err
	}
	return c.writeOutput(opts.out, buf.Bytes())
}

func (c *cli) writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cerr.NewError(cerr.Internal, "cannot write "+path, err)
	}
	fmt.Fprintf(c.out, "Wrote %s\n", path)
	return nil
}
