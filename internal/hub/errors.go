package hub

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrUnauthorized   = errors.New("hub rejected the access token")
	ErrMalformed      = errors.New("malformed hub response")
)

// StatusError reports an unexpected HTTP status from the hub.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected HTTP status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected HTTP status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsTransient reports whether err is worth retrying on the next poll. A
// rejected token is the only failure that will not fix itself.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrUnauthorized)
}
