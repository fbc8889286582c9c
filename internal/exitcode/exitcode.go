// Package exitcode defines the process exit codes of the launcher and the
// error type that carries them to the command line edge.
package exitcode

import "errors"

// Process exit codes.
const (
	Success        = 0
	RuntimeFailure = 1
	InvalidUsage   = 2
	InvalidConfig  = 3
	LaunchFailure  = 4
	Interrupted    = 130
)

// Error pairs an error with the exit code the process should end with.
type Error struct {
	Code int
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches code to err. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Code: code, Err: err}
}

// Of returns the exit code for err: Success for nil, the attached code when
// err carries one and RuntimeFailure otherwise.
func Of(err error) int {
	if err == nil {
		return Success
	}

	var exitErr *Error
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return RuntimeFailure
}
