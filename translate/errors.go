package translate

import (
	"context"
	"errors"
	"fmt"
)

// StatusError is a non-2xx response from the translation service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.Code)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Message)
}

// TransportError is a failure to get any response: connection refused,
// reset, DNS failure or the attempt deadline expiring.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Class groups errors by how the client reacts to them.
type Class int

const (
	// Unclassified errors are not retried.
	Unclassified Class = iota
	// Transient errors (5xx, transport) are retried.
	Transient
	// ClientErrors (4xx) are never retried.
	ClientErrors
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case ClientErrors:
		return "client error"
	}
	return "unclassified"
}

// Classify sorts an attempt error into a Class.
func Classify(err error) Class {
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code >= 500:
			return Transient
		case se.Code >= 400:
			return ClientErrors
		}
		return Unclassified
	}
	var te *TransportError
	if errors.As(err, &te) {
		return Transient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	return Unclassified
}
