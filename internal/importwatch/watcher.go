// Package importwatch turns spreadsheets dropped into a folder into tasks.
package importwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tugaskita/tugasboard/internal/spreadsheet"
	"github.com/tugaskita/tugasboard/internal/task"
)

const (
	DoneDir   = "done"
	FailedDir = "failed"

	// DebounceInterval lets a file finish being written before it is read.
	DebounceInterval = 300 * time.Millisecond
)

// Creator posts one imported row upstream.
type Creator interface {
	CreateTaskJSON(ctx context.Context, n task.NewTask) (*task.Task, error)
}

type Result struct {
	File     string
	Created  int
	Failed   int
	Skipped  int
	MovedTo  string
	ParseErr error
}

type Watcher struct {
	dir             string
	creator         Creator
	defaultPriority task.Priority
	debounce        time.Duration
	onResult        func(Result)
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithResultHook is called after every processed file.
func WithResultHook(fn func(Result)) Option {
	return func(w *Watcher) { w.onResult = fn }
}

func New(dir string, creator Creator, defaultPriority task.Priority, opts ...Option) *Watcher {
	w := &Watcher{
		dir:             dir,
		creator:         creator,
		defaultPriority: defaultPriority.OrDefault(),
		debounce:        DebounceInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes the spreadsheets already in the folder, then every new one,
// until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{DoneDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to prepare import folder: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	slog.InfoContext(ctx, "watching import folder", "dir", w.dir)

	ready := make(chan string, 16)
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Stop()
		}
		timers[path] = time.AfterFunc(w.debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && importable(e.Name()) {
			schedule(filepath.Join(w.dir, e.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !importable(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			schedule(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "fsnotify error", "error", err)
		case path := <-ready:
			if _, err := os.Stat(path); err != nil {
				continue
			}
			res := w.ProcessFile(ctx, path)
			if w.onResult != nil {
				w.onResult(res)
			}
		}
	}
}

func importable(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// ProcessFile imports one workbook and moves it into done/ when every row
// was created, failed/ otherwise.
func (w *Watcher) ProcessFile(ctx context.Context, path string) Result {
	res := Result{File: filepath.Base(path)}

	created, failed, skipped, err := w.importFile(ctx, path)
	res.Created, res.Failed, res.Skipped, res.ParseErr = created, failed, skipped, err

	target := DoneDir
	if err != nil || failed > 0 {
		target = FailedDir
	}
	moved, mvErr := moveInto(path, filepath.Join(w.dir, target))
	if mvErr != nil {
		slog.ErrorContext(ctx, "failed to move imported file", "file", path, "error", mvErr)
	}
	res.MovedTo = moved

	slog.InfoContext(ctx, "import processed",
		"file", res.File, "created", created, "failed", failed, "skipped", skipped, "moved_to", moved, "error", err)
	return res
}

func (w *Watcher) importFile(ctx context.Context, path string) (created, failed, skipped int, err error) {
	return ImportFile(ctx, w.creator, path, w.defaultPriority)
}

// ImportFile posts every task row of the workbook at path through creator.
// A row the server rejects is counted as failed and does not stop the rest.
func ImportFile(ctx context.Context, creator Creator, path string, defaultPriority task.Priority) (created, failed, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	parsed, err := spreadsheet.ParseImport(f, defaultPriority)
	if err != nil {
		return 0, 0, 0, err
	}
	if len(parsed.Tasks) == 0 {
		return 0, 0, parsed.Skipped, errors.New("no task rows in file")
	}
	for _, n := range parsed.Tasks {
		if err := ctx.Err(); err != nil {
			return created, failed, parsed.Skipped, err
		}
		if _, err := creator.CreateTaskJSON(ctx, n); err != nil {
			slog.WarnContext(ctx, "import row rejected", "title", n.Title, "error", err)
			failed++
			continue
		}
		created++
	}
	return created, failed, parsed.Skipped, nil
}

func moveInto(path, dir string) (string, error) {
	target := filepath.Join(dir, time.Now().Format("20060102-150405")+"_"+filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}
