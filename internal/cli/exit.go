package cli

import "errors"

// ExitCodeError wraps an error with a specific process exit code.
// Plain errors exit with code 1.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// errUsage signals that usage was already printed and nothing goes to stderr
var errUsage = &ExitCodeError{Code: 1, Err: errors.New("usage")}

// exitCode maps an error returned by the command tree to a process exit code
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return 1
}
