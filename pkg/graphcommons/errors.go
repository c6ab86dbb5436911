package graphcommons

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoPaths       = errors.New("at least one path is required")
	ErrInvalidAction = errors.New("invalid signal action")
	ErrMissingAPIKey = errors.New("api key is required")
)

// ErrorCodes are the response status codes reported as an APIError.
var ErrorCodes = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusUnauthorized:        true,
	http.StatusForbidden:           true,
	http.StatusNotFound:            true,
	http.StatusMethodNotAllowed:    true,
	http.StatusInternalServerError: true,
}

// APIError is returned when the service answers with one of ErrorCodes.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graphcommons: %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnresolvedReferenceError reports an id that a record points at but the
// graph does not contain.
type UnresolvedReferenceError struct {
	Kind Kind   // kind of the missing record
	ID   string // missing id
	From string // record holding the reference, e.g. "edge 10"
}

func (e *UnresolvedReferenceError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("unresolved %s %q", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s: unresolved %s %q", e.From, e.Kind, e.ID)
}
