package cli

import (
	"errors"
	"fmt"

	"cartsync"
)

// ExitError carries a process exit code through cobra's error return. A nil
// Message means the command already printed everything it had to say.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// ExitCode extracts the process exit code from a command error. RunError
// codes take priority; a bare error maps to the generic failure code.
func ExitCode(err error) int {
	if err == nil {
		return cartsync.ExitOK
	}
	var runErr *cartsync.RunError
	if errors.As(err, &runErr) {
		return runErr.Code
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return cartsync.ExitBlocked
}

// Render formats a command error for stderr. RunErrors render their full
// context/next-step block; everything else renders one line.
func Render(err error) string {
	if err == nil {
		return ""
	}
	var runErr *cartsync.RunError
	if errors.As(err, &runErr) {
		return runErr.Format()
	}
	if msg := err.Error(); msg != "" {
		return "Error: " + msg + "\n"
	}
	return ""
}
