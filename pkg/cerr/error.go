package cerr

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/tickdone/tickdone/pkg/clog"
)

type Error struct {
	Code    Code
	Msg     string         // message returned to the user alongside Code
	Err     error          // underlying error, kept for logs only
	Stack   string         // stack trace, captured for error-level codes
	Details map[string]any // structured details returned to the user
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.HTTPStatusToLevel(code.HTTPCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func NewErrorWithDetails(code Code, msg string, underlying error, details map[string]any) *Error {
	err := NewError(code, msg, underlying)
	err.Details = details
	return err
}

func (e *Error) AddDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message, which for server rejections is
// the message the server supplied verbatim.
func Message(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Msg
	}
	return err.Error()
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}
