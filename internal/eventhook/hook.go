// Package eventhook runs user-configured shell commands when the task
// store changes, e.g. to play a sound or forward a message elsewhere.
package eventhook

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/pushnotification"
	"github.com/tugaskita/tugasboard/internal/task"
)

const DefaultTimeout = 30 * time.Second

// Hook is one entry of the hooks file. Status and Level narrow the match;
// empty matches anything.
type Hook struct {
	Name    string                 `yaml:"name"`
	Event   eventbus.EventType     `yaml:"event"`
	Status  task.Status            `yaml:"status,omitempty"`
	Level   pushnotification.Level `yaml:"level,omitempty"`
	Command string                 `yaml:"command"`
	Timeout time.Duration          `yaml:"timeout,omitempty"`
}

type hooksFile struct {
	Hooks []Hook `yaml:"hooks"`
}

// Load reads a hooks file. Every hook must name a command.
func Load(path string) ([]Hook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hooks file: %w", err)
	}
	var f hooksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse hooks file %s: %w", path, err)
	}
	for i, h := range f.Hooks {
		if h.Command == "" {
			return nil, fmt.Errorf("hook %d (%s) has no command", i+1, h.Name)
		}
		if h.Name == "" {
			f.Hooks[i].Name = fmt.Sprintf("hook-%d", i+1)
		}
	}
	return f.Hooks, nil
}

// Matches reports whether h should run for e. An empty Event or "*"
// matches every task event.
func (h *Hook) Matches(e *eventbus.Event) bool {
	if h.Event != "" && h.Event != "*" && h.Event != e.Type {
		return false
	}
	if h.Status != "" && (e.Task == nil || e.Task.Status != h.Status) {
		return false
	}
	if h.Level != "" {
		p, ok := pushnotification.FromEvent(e)
		if !ok || p.Level != h.Level {
			return false
		}
	}
	return true
}

func (h *Hook) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return DefaultTimeout
}
