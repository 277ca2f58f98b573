package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sourcegraph/conc/pool"

	server "github.com/tugaskita/tugasboard/internal"
	"github.com/tugaskita/tugasboard/internal/dashboard"
	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/eventhook"
	"github.com/tugaskita/tugasboard/internal/importwatch"
	"github.com/tugaskita/tugasboard/internal/pushnotification"
	pushsubrepo "github.com/tugaskita/tugasboard/internal/pushsubscription/repositoryimpl"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskstore"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serve(ctx context.Context) error {
	api, err := c.client(ctx)
	if err != nil {
		return err
	}

	// Setup store
	bus := eventbus.New()
	store := taskstore.New(taskstore.WithEventBus(bus))
	c.restore(ctx, store)

	stopFollow, err := c.follow(ctx, api, store)
	if err != nil {
		return err
	}
	defer stopFollow()

	// Setup push notification
	pushSubRepo := pushsubrepo.NewYAMLRepository(c.storage)
	pushSender := pushnotification.NewSender(&c.env.VAPIDEnv, pushSubRepo)
	pushDispatcher := pushnotification.NewDispatcher(bus, pushSender)
	if !c.env.VAPIDEnv.Configured() {
		slog.InfoContext(ctx, "VAPID keys not set, browser push is disabled")
	}

	var hookRunner *eventhook.Runner
	if c.env.HooksFile != "" {
		hooks, err := eventhook.Load(c.env.HooksFile)
		if err != nil {
			return err
		}
		hookRunner = eventhook.NewRunner(hooks)
	}

	srv := server.NewServer(
		c.env,
		dashboard.NewServer(store, api, bus, c.env.PageSize),
		pushnotification.NewServer(&c.env.VAPIDEnv, pushSubRepo),
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		pushDispatcher.Start(ctx)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		c.persist(ctx, bus, store)
		return nil
	})
	if hookRunner != nil {
		p.Go(func(ctx context.Context) error {
			hookRunner.Start(ctx, bus)
			return nil
		})
	}
	if dir := c.env.ImportEnv.WatchDir; dir != "" {
		watcher := importwatch.New(dir, api, task.Priority(c.env.ImportEnv.DefaultPriority))
		p.Go(watcher.Run)
	}
	p.Go(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")

		// Give active connections time to finish after stream contexts are cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return p.Wait()
}
