package cerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/tugaskita/tugasboard/pkg/storage"
)

// Local state (session, snapshot, push subscriptions) lives in pkg/storage.
// The helpers below give its failures a code and a message naming what was
// being handled; a missing key is NotFound whatever the operation.

func WrapStorageReadError(what string, err error) error {
	return wrapStorage("read", what, err)
}

func WrapStorageWriteError(what string, err error) error {
	return wrapStorage("save", what, err)
}

func WrapStorageDeleteError(what string, err error) error {
	return wrapStorage("remove", what, err)
}

func wrapStorage(verb, what string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewError(NotFound, "no "+what+" stored", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return From(err)
	}
	return NewError(Internal, fmt.Sprintf("cannot %s %s in local storage", verb, what), err)
}
