package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tugaskita/tugasboard/internal/session"
	"github.com/tugaskita/tugasboard/pkg/cerr"
	"github.com/tugaskita/tugasboard/pkg/storage"
)

const sessionPath = "session/current.yaml"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func (r *YAMLRepository) Save(ctx context.Context, s *session.Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal session: %w", err))
	}
	if err := r.storage.Write(ctx, sessionPath, data); err != nil {
		return cerr.WrapStorageWriteError("session", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context) (*session.Session, error) {
	data, err := r.storage.Read(ctx, sessionPath)
	if err != nil {
		return nil, cerr.WrapStorageReadError("session", err)
	}
	var s session.Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.DataLoss, "session file is corrupt", fmt.Errorf("failed to unmarshal session: %w", err))
	}
	return &s, nil
}

func (r *YAMLRepository) Delete(ctx context.Context) error {
	if err := r.storage.Delete(ctx, sessionPath); err != nil {
		return cerr.WrapStorageDeleteError("session", err)
	}
	return nil
}
