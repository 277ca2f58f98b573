package taskstore

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/cerr"
	"github.com/tugaskita/tugasboard/pkg/storage"
)

const snapshotPath = "snapshots/latest.yaml"

type snapshotData struct {
	SavedAt time.Time    `yaml:"saved_at"`
	Tasks   []*task.Task `yaml:"tasks"`
}

// Snapshotter keeps the last known task list in storage so that offline
// commands (list, monitor, export) have something to show.
type Snapshotter struct {
	storage storage.Storage
}

func NewSnapshotter(s storage.Storage) *Snapshotter {
	return &Snapshotter{storage: s}
}

func (sn *Snapshotter) Save(ctx context.Context, s *Store) error {
	data, err := yaml.Marshal(&snapshotData{
		SavedAt: time.Now().UTC(),
		Tasks:   s.Snapshot(),
	})
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal snapshot: %w", err))
	}
	if err := sn.storage.Write(ctx, snapshotPath, data); err != nil {
		return cerr.WrapStorageWriteError("snapshot", err)
	}
	return nil
}

// Load replaces s's contents with the stored snapshot and returns when it was taken.
func (sn *Snapshotter) Load(ctx context.Context, s *Store) (time.Time, error) {
	data, err := sn.storage.Read(ctx, snapshotPath)
	if err != nil {
		return time.Time{}, cerr.WrapStorageReadError("snapshot", err)
	}
	var snap snapshotData
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return time.Time{}, cerr.NewError(cerr.DataLoss, "snapshot is corrupt", fmt.Errorf("failed to unmarshal snapshot: %w", err))
	}
	s.Replace(snap.Tasks)
	return snap.SavedAt, nil
}
