package cmd

import (
	"errors"
	"fmt"

	"github.com/Chargde-Porcupine/SHtack/internal/client"
)

// exitHTTPFailure is the exit code used when the server answers with a
// failure status (400, 404, 500).
const exitHTTPFailure = 2

// ExitCodeError carries a process exit code back to main.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitCodeError returns an ExitCodeError with the given code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

// serverRejection returns a user-facing message when err is a failure status
// from the server, or "" if it is some other error.
func serverRejection(err error) string {
	var se *client.StatusError
	if !errors.As(err, &se) {
		return ""
	}
	if se.Body != "" {
		return fmt.Sprintf("server rejected request (%d): %s", se.Code, se.Body)
	}
	return fmt.Sprintf("server rejected request (%d)", se.Code)
}
