package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tugaskita/tugasboard/internal/apiclient"
	"github.com/tugaskita/tugasboard/internal/config"
	"github.com/tugaskita/tugasboard/internal/session"
	sessionrepo "github.com/tugaskita/tugasboard/internal/session/repositoryimpl"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskstore"
	"github.com/tugaskita/tugasboard/pkg/cerr"
	"github.com/tugaskita/tugasboard/pkg/storage"
)

// cli carries what every command needs: configuration, local state and
// where to print.
type cli struct {
	env       *config.Env
	out       io.Writer
	storage   storage.Storage
	sessions  session.Repository
	snapshots *taskstore.Snapshotter
	now       func() time.Time
}

func newCLI(ctx context.Context, env *config.Env, out io.Writer) (*cli, error) {
	st, err := storage.Open(ctx, env.StorageEnv.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return &cli{
		env:       env,
		out:       out,
		storage:   st,
		sessions:  sessionrepo.NewYAMLRepository(st),
		snapshots: taskstore.NewSnapshotter(st),
		now:       time.Now,
	}, nil
}

// client builds an API client carrying the stored token, if any.
func (c *cli) client(ctx context.Context) (*apiclient.Client, error) {
	var token string
	if s, err := c.sessions.Get(ctx); err == nil {
		token = s.Token
	}
	return c.newClient(token)
}

func (c *cli) newClient(token string) (*apiclient.Client, error) {
	return apiclient.New(c.env.APIEnv.BaseURL,
		apiclient.WithTimeout(c.env.RequestTimeout),
		apiclient.WithToken(token),
	)
}

// load returns a store holding the current task list. Online it is fetched
// and saved as the new snapshot; when the API cannot be reached, or offline
// is set, the last snapshot is used instead.
func (c *cli) load(ctx context.Context, api *apiclient.Client, offline bool) (*taskstore.Store, error) {
	store := taskstore.New()
	if !offline {
		tasks, err := api.ListTasks(ctx)
		if err == nil {
			store.Replace(tasks)
			if err := c.snapshots.Save(ctx, store); err != nil {
				slog.WarnContext(ctx, "failed to save snapshot", "error", err)
			}
			return store, nil
		}
		if !cerr.IsCode(err, cerr.Unavailable) && !cerr.IsCode(err, cerr.DeadlineExceeded) {
			return nil, err
		}
		slog.WarnContext(ctx, "API unreachable, using the last snapshot", "error", err)
	}
	savedAt, err := c.snapshots.Load(ctx, store)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.Unavailable, "no saved task list yet, run once while online", err)
		}
		return nil, err
	}
	slog.DebugContext(ctx, "loaded snapshot", "saved_at", savedAt, "tasks", store.Len())
	return store, nil
}

func (c *cli) loadOnline(ctx context.Context, offline bool) (*apiclient.Client, *taskstore.Store, error) {
	api, err := c.client(ctx)
	if err != nil {
		return nil, nil, err
	}
	store, err := c.load(ctx, api, offline)
	if err != nil {
		return nil, nil, err
	}
	return api, store, nil
}

func parseDateFlag(name, value string) (task.Date, error) {
	d, err := task.ParseDate(value)
	if err != nil {
		return task.Date{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("--%s must be YYYY-MM-DD", name), err)
	}
	return d, nil
}

// describe renders err for a person at a terminal.
func describe(err error) string {
	e := cerr.From(err)
	switch e.Code {
	case cerr.Unknown:
		return err.Error()
	case cerr.Canceled:
		return "interrupted"
	}
	msg := e.Msg
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, ", ") + ")"
	}
	if e.Code == cerr.Unavailable && e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}
