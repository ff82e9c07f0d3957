package speech

import (
	"fmt"
)

// ConnectionError reports a transport failure where no response was received
// (DNS, connection refused, timeout, cancelled context).
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: failed to connect to the server: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// APIError reports a non-2xx response from the remote endpoint.
type APIError struct {
	Op         string
	StatusCode int
	Status     string // reason phrase, e.g. "429 Too Many Requests"
	Message    string // server-provided error message, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: api request failed: %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: api request failed: %s", e.Op, e.Status)
}

// ParseError reports a response body that did not have the expected shape.
type ParseError struct {
	Op    string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to parse response field %q: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse response field %q", e.Op, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidInputError reports a precondition failure detected before any
// network call was made.
type InvalidInputError struct {
	Op     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Reason)
}
