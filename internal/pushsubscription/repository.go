package pushsubscription

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context) ([]*Subscription, error)
	Delete(ctx context.Context, id string) error
	FindByEndpoint(ctx context.Context, endpoint string) (*Subscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// Register stores a subscription, refreshing the keys when the endpoint is
// already known.
func Register(ctx context.Context, repo Repository, endpoint, p256dh, auth, username string) (*Subscription, error) {
	switch {
	case endpoint == "":
		return nil, cerr.NewError(cerr.InvalidArgument, "endpoint is required", nil).AddDetail("endpoint")
	case p256dh == "":
		return nil, cerr.NewError(cerr.InvalidArgument, "p256dh key is required", nil).AddDetail("p256dh")
	case auth == "":
		return nil, cerr.NewError(cerr.InvalidArgument, "auth key is required", nil).AddDetail("auth")
	}

	existing, err := repo.FindByEndpoint(ctx, endpoint)
	if err != nil && !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}
	sub := &Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  endpoint,
		CreatedAt: time.Now(),
	}
	if existing != nil {
		if err := repo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		sub = existing
	}
	sub.P256dhKey = p256dh
	sub.AuthKey = auth
	sub.Username = username
	if err := repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
