package loader

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a candidate load that the server answered with a non-2xx
// status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("load %s: status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// IsAccessDenied reports whether err carries a 401 or 403 status, meaning
// the access credential is no longer valid.
func IsAccessDenied(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
