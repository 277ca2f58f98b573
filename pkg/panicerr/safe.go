package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

// Call runs fn and converts a panic into an error.
func Call(fn func()) error {
	var catcher panics.Catcher
	catcher.Try(fn)
	return catcher.Recovered().AsError()
}

// Safe wraps fn so that a panic surfaces as its returned error.
func Safe(fn func() error) func() error {
	return func() error {
		var err error
		if perr := Call(func() { err = fn() }); perr != nil {
			return perr
		}
		return err
	}
}

// SafeContext is Safe for context-taking functions.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Safe(func() error { return fn(ctx) })()
	}
}
