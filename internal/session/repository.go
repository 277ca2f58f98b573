package session

import (
	"context"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context) (*Session, error)
	Delete(ctx context.Context) error
}

// Current returns the stored session, reporting a missing or empty one as
// Unauthenticated.
func Current(ctx context.Context, repo Repository) (*Session, error) {
	s, err := repo.Get(ctx)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.Unauthenticated, "not logged in, run the login command first", err)
		}
		return nil, err
	}
	if s.Username == "" {
		return nil, cerr.NewError(cerr.Unauthenticated, "not logged in, run the login command first", nil)
	}
	return s, nil
}
