package catchall

import (
	"errors"
	"fmt"
)

// ErrBudgetExhausted is returned by the poller when the attempt budget runs
// out before the job reports completion. The last pulled page is still
// returned alongside it.
var ErrBudgetExhausted = errors.New("catchall: poll attempt budget exhausted")

// ConfigurationError reports a missing credential or setting detected before
// any request is attempted.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("catchall: %s is not configured", e.Missing)
}

// RequestError reports a non-2xx response from the API, or a response body
// that could not be decoded. Message carries the server-provided detail when
// one was present, otherwise the raw body.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("catchall: API error (%d): %s", e.StatusCode, e.Message)
}
