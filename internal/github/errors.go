package github

import (
	"errors"
	"fmt"
)

// ErrRateLimitExceeded is returned when a throttled search call is still
// throttled after the configured number of retries.
var ErrRateLimitExceeded = errors.New("github: rate limit exceeded after retries")

// StatusError reports an upstream response whose status differs from the
// one the operation requires.
type StatusError struct {
	Operation string
	Status    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github: %s returned unexpected status %d", e.Operation, e.Status)
}
