package eventhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/pushnotification"
)

// Runner executes hooks with an in-process POSIX shell, so hooks behave the
// same whether or not the host has /bin/sh.
type Runner struct {
	hooks  []Hook
	output io.Writer
}

type Option func(*Runner)

// WithOutput sends hook stdout and stderr to w instead of discarding it.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.output = w }
}

func NewRunner(hooks []Hook, opts ...Option) *Runner {
	r := &Runner{hooks: hooks, output: io.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs matching hooks for every bus event until ctx is done. Hooks
// run one at a time in event order.
func (r *Runner) Start(ctx context.Context, bus *eventbus.Bus) {
	subID, ch := bus.Subscribe(64)
	defer bus.Unsubscribe(subID)

	slog.InfoContext(ctx, "event hooks started", "hooks", len(r.hooks))
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			r.Execute(ctx, e)
		}
	}
}

// Execute runs every hook matching e and returns how many succeeded.
// A failing hook is logged and does not stop the others.
func (r *Runner) Execute(ctx context.Context, e *eventbus.Event) int {
	ok := 0
	for i := range r.hooks {
		h := &r.hooks[i]
		if !h.Matches(e) {
			continue
		}
		if err := r.run(ctx, h, e); err != nil {
			slog.WarnContext(ctx, "hook failed", "hook", h.Name, "event", e.Type, "error", err)
			continue
		}
		ok++
	}
	return ok
}

func (r *Runner) run(ctx context.Context, h *Hook, e *eventbus.Event) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(h.Command), h.Name)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(append(os.Environ(), eventEnv(e)...)...)),
		interp.StdIO(nil, r.output, r.output),
	)
	if err != nil {
		return fmt.Errorf("prepare shell: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()
	start := time.Now()
	if err := runner.Run(ctx, file); err != nil {
		return err
	}
	slog.DebugContext(ctx, "hook ran", "hook", h.Name, "event", e.Type, "elapsed", time.Since(start))
	return nil
}

// eventEnv describes e to the hook command.
func eventEnv(e *eventbus.Event) []string {
	env := []string{
		"TUGASBOARD_EVENT_ID=" + e.ID,
		"TUGASBOARD_EVENT_TYPE=" + string(e.Type),
		"TUGASBOARD_EVENT_TIME=" + e.CreatedAt.Format(time.RFC3339),
	}
	if e.Task != nil {
		env = append(env,
			"TUGASBOARD_TASK_ID="+e.Task.ID.String(),
			"TUGASBOARD_TASK_TITLE="+e.Task.Title,
			"TUGASBOARD_TASK_STATUS="+string(e.Task.Status),
			"TUGASBOARD_TASK_WORKER="+e.Task.Worker,
		)
		if data, err := json.Marshal(e.Task); err == nil {
			env = append(env, "TUGASBOARD_TASK_JSON="+string(data))
		}
	}
	if p, ok := pushnotification.FromEvent(e); ok {
		env = append(env, "TUGASBOARD_NOTIFY_LEVEL="+string(p.Level))
	}
	return env
}
