package client

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a remote failure for exhaustive handling at call sites.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindRateLimited ErrorKind = "rate_limited"
	KindInvalid     ErrorKind = "invalid"
	KindServerFault ErrorKind = "server_fault"
)

// RemoteError is a response the authority produced: it carries the HTTP
// status, a kind derived from it, and the structured error body verbatim so
// callers can surface details like the implicated cycle.
type RemoteError struct {
	Status  int
	Kind    ErrorKind
	Message string
	Details map[string]any
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("remote error %d (%s)", e.Status, e.Kind)
}

// Retryable reports whether the failure is worth another attempt:
// rate limiting and server faults are, every other 4xx is not.
func (e *RemoteError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// ConnectivityError is a failure with no status classification at all:
// DNS, timeout, refused connection, offline.
type ConnectivityError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindInvalid
	default:
		return KindServerFault
	}
}
