package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind is the stable category of an error, used by the HTTP layer to pick a status code.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindForbidden           Kind = "FORBIDDEN"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindInvalidRequest      Kind = "INVALID_REQUEST"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindFulfillmentRejected Kind = "FULFILLMENT_REJECTED"
	KindInternal            Kind = "INTERNAL"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *ErrNotFound) Kind() Kind { return KindNotFound }

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

func (e *ErrUnauthorized) Kind() Kind { return KindUnauthorized }

// ErrForbidden is returned when an operation targets a protected built-in role or user,
// or the caller lacks the permission for it.
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "forbidden"
}

func (e *ErrForbidden) Kind() Kind { return KindForbidden }

// ErrConflict is returned when there's a conflict (e.g., duplicate unique key)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

func (e *ErrConflict) Kind() Kind { return KindConflict }

// ErrConcurrencyConflict is returned when a versioned write lost against a concurrent writer.
type ErrConcurrencyConflict struct {
	Resource string
	ID       string
}

func (e *ErrConcurrencyConflict) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Resource, e.ID)
}

func (e *ErrConcurrencyConflict) Kind() Kind { return KindConflict }

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

func (e *ErrValidation) Kind() Kind { return KindInvalidRequest }

// ErrUpstreamUnavailable wraps a failed call to the remote commerce platform.
type ErrUpstreamUnavailable struct {
	Op  string
	Err error
}

func (e *ErrUpstreamUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream unavailable: %s", e.Op)
	}
	return fmt.Sprintf("upstream unavailable: %s: %v", e.Op, e.Err)
}

func (e *ErrUpstreamUnavailable) Unwrap() error { return e.Err }

func (e *ErrUpstreamUnavailable) Kind() Kind { return KindUpstreamUnavailable }

// ErrFulfillmentRejected is returned when the platform refused a fulfillment request.
type ErrFulfillmentRejected struct {
	Reasons []string
	Err     error
}

func (e *ErrFulfillmentRejected) Error() string {
	if len(e.Reasons) > 0 {
		return "fulfillment rejected: " + strings.Join(e.Reasons, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("fulfillment rejected: %v", e.Err)
	}
	return "fulfillment rejected"
}

func (e *ErrFulfillmentRejected) Unwrap() error { return e.Err }

func (e *ErrFulfillmentRejected) Kind() Kind { return KindFulfillmentRejected }

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the first typed error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var k kinded
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// IsNotFound reports whether err is (or wraps) an ErrNotFound.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return stderrors.As(err, &nf)
}

// IsConcurrencyConflict reports whether err is (or wraps) an ErrConcurrencyConflict.
func IsConcurrencyConflict(err error) bool {
	var cc *ErrConcurrencyConflict
	return stderrors.As(err, &cc)
}
