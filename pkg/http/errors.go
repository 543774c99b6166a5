package http

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call so callers never need to inspect error strings.
type ErrorKind string

const (
	KindNone    ErrorKind = ""
	KindNetwork ErrorKind = "network"
	KindServer  ErrorKind = "server"
	KindDecode  ErrorKind = "decode"
	KindOther   ErrorKind = "other"
)

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err      error
	Attempts uint
}

func (e *NetworkError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError means a 2xx response carried a body that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a *NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// KindOf returns the ErrorKind of err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		netErr    *NetworkError
		httpErr   *HTTPError
		decodeErr *DecodeError
	)
	switch {
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &httpErr):
		return KindServer
	case errors.As(err, &decodeErr):
		return KindDecode
	default:
		return KindOther
	}
}
