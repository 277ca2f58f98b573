package cerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"

	"github.com/tugaskita/tugasboard/pkg/clog"
)

type Error struct {
	Code    Code
	Msg     string   // shown to the user together with Code
	Err     error    // kept for the log only
	Stack   string   // captured for error-level codes
	Details []string // extra user-facing hints, e.g. which form field is missing
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.ConnectCodeToLevel(code.ConnectCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[:n])
	}
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) AddDetail(msg string) *Error {
	e.Details = append(e.Details, msg)
	return e
}

// From normalises any error into *Error. Cancellation is reported as
// Canceled, anything unrecognised as Unknown.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr
	}
	if errors.Is(err, context.Canceled) {
		return NewError(Canceled, "connection closed", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(DeadlineExceeded, "request timed out", err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.Err == "operation was canceled" {
		return NewError(Canceled, "connection closed", err)
	}
	return NewError(Unknown, "unknown error", err)
}

func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	return From(err).Code
}

func IsCode(err error, code Code) bool {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
