package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call to the geovocab API.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"   // request never got a response
	KindNotFound  ErrorKind = "not_found" // HTTP 404
	KindRejected  ErrorKind = "rejected"  // any other 4xx
	KindServer    ErrorKind = "server"    // 5xx
	KindMalformed ErrorKind = "malformed" // body is not a usable envelope
)

// Kinds used for failures that never reach the API.
const (
	KindInput       ErrorKind = "input"
	KindGeolocation ErrorKind = "geolocation"
)

var (
	ErrGeolocationUnsupported = errors.New("geolocation unsupported")
	ErrGeolocationDenied      = errors.New("geolocation denied")
	ErrSessionNotFound        = errors.New("session not found")
)

// LookupError is returned by every API client operation on failure.
type LookupError struct {
	Op      string
	Kind    ErrorKind
	Status  int    // HTTP status, 0 for network failures
	Message string // envelope message sent by the server, if any
	Err     error
}

func (e *LookupError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Kind, e.Status)
	}
}

func (e *LookupError) Unwrap() error { return e.Err }

// KindOf returns the kind of a lookup error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// UserMessage collapses err into the string shown to the user. A message
// supplied by the server wins; everything else becomes fallback.
func UserMessage(err error, fallback string) string {
	var le *LookupError
	if errors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	return fallback
}
