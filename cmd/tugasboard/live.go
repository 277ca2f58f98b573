package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	fc "github.com/fatih/color"

	"github.com/tugaskita/tugasboard/internal/apiclient"
	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/eventhook"
	"github.com/tugaskita/tugasboard/internal/pushnotification"
	"github.com/tugaskita/tugasboard/internal/syncchannel"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskstore"
	"github.com/tugaskita/tugasboard/pkg/cerr"
	"github.com/tugaskita/tugasboard/pkg/color"
)

// follow keeps store in line with the push channel. Every (re)connect
// refetches the whole list; taskAdded and taskUpdated patch it in between.
func (c *cli) follow(ctx context.Context, api *apiclient.Client, store *taskstore.Store) (stop func(), err error) {
	hub := syncchannel.NewHub()
	unbind := taskstore.Bind(store, hub)

	ctx, cancel := context.WithCancel(ctx)
	rf := newRefetcher(api.ListTasks, store)
	go rf.Run(ctx)

	sock, err := syncchannel.NewSocketClient(c.env.SocketBaseURL(),
		syncchannel.WithOnConnect(rf.Kick),
	)
	if err != nil {
		cancel()
		unbind()
		return nil, err
	}
	stopRelay := hub.Relay(sock)
	if err := sock.Start(ctx); err != nil {
		cancel()
		stopRelay()
		unbind()
		return nil, err
	}
	return func() {
		_ = sock.Close()
		cancel()
		stopRelay()
		unbind()
	}, nil
}

// refetcher reloads the whole list into a store, one request at a time.
// Kicks that arrive while a reload is running collapse into one more reload,
// so an older response can never overwrite a newer one.
type refetcher struct {
	load  func(context.Context) ([]*task.Task, error)
	store *taskstore.Store
	kick  chan struct{}
}

func newRefetcher(load func(context.Context) ([]*task.Task, error), store *taskstore.Store) *refetcher {
	return &refetcher{load: load, store: store, kick: make(chan struct{}, 1)}
}

// Kick asks for a reload without waiting for it.
func (r *refetcher) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *refetcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.kick:
		}
		tasks, err := r.load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.WarnContext(ctx, "failed to refetch tasks", "error", err)
			}
			continue
		}
		r.store.Replace(tasks)
		slog.DebugContext(ctx, "task list refreshed", "tasks", r.store.Len())
	}
}

// restore seeds store with the last snapshot, if there is one.
func (c *cli) restore(ctx context.Context, store *taskstore.Store) {
	savedAt, err := c.snapshots.Load(ctx, store)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "restored task snapshot", "saved_at", savedAt, "tasks", store.Len())
	case cerr.IsCode(err, cerr.NotFound):
	default:
		slog.WarnContext(ctx, "failed to restore task snapshot", "error", err)
	}
}

// startHooks runs the configured event hooks in the background, if any.
func (c *cli) startHooks(ctx context.Context, bus *eventbus.Bus) error {
	if c.env.HooksFile == "" {
		return nil
	}
	hooks, err := eventhook.Load(c.env.HooksFile)
	if err != nil {
		return err
	}
	go eventhook.NewRunner(hooks).Start(ctx, bus)
	return nil
}

// persist saves a snapshot after every store change until ctx is done.
func (c *cli) persist(ctx context.Context, bus *eventbus.Bus, store *taskstore.Store) {
	subID, ch := bus.Subscribe(64)
	defer bus.Unsubscribe(subID)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := c.snapshots.Save(ctx, store); err != nil {
				slog.WarnContext(ctx, "failed to save task snapshot", "error", err)
			}
		}
	}
}

func (c *cli) watch(ctx context.Context, bell bool) error {
	api, err := c.client(ctx)
	if err != nil {
		return err
	}
	bus := eventbus.New()
	store := taskstore.New(taskstore.WithEventBus(bus))
	c.restore(ctx, store)

	subID, events := bus.Subscribe(64)
	defer bus.Unsubscribe(subID)

	stop, err := c.follow(ctx, api, store)
	if err != nil {
		return err
	}
	defer stop()
	go c.persist(ctx, bus, store)
	if err := c.startHooks(ctx, bus); err != nil {
		return err
	}

	fmt.Fprintln(c.out, color.Muted.Sprintf("Following %s, Ctrl-C to stop", c.env.SocketBaseURL()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if e.Type == eventbus.TypeTasksReplaced {
				fmt.Fprintln(c.out, color.Muted.Sprintf("%s %d tasks loaded",
					e.CreatedAt.Local().Format("15:04:05"), store.Len()))
				continue
			}
			announce(c.out, e, bell)
		}
	}
}

var bellCount = map[pushnotification.Level]int{
	pushnotification.LevelInfo:    1,
	pushnotification.LevelSuccess: 1,
	pushnotification.LevelError:   2,
}

// announce prints one line for a task event, ringing the terminal bell
// first when bell is set.
func announce(w io.Writer, e *eventbus.Event, bell bool) {
	p, ok := pushnotification.FromEvent(e)
	if !ok {
		return
	}
	line := fmt.Sprintf("%s %s %s",
		color.Muted.Sprint(e.CreatedAt.Local().Format("15:04:05")), levelColor(p.Level).Sprint(p.Title), p.Body)
	if e.Task.ShowWorker() {
		line += " " + color.Prefix(e.Task.Worker)
	}
	if bell {
		line = strings.Repeat("\a", bellCount[p.Level]) + line
	}
	fmt.Fprintln(w, line)
}

func levelColor(l pushnotification.Level) *fc.Color {
	switch l {
	case pushnotification.LevelSuccess:
		return color.Success
	case pushnotification.LevelError:
		return color.Error
	}
	return color.Info
}
