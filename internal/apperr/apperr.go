// Package apperr defines the error taxonomy shared by every application
// package: not-found, validation, authorization, and payment-gateway
// failures. Store errors carry no marker and propagate as-is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
)

// GatewayError wraps a failed payment-provider call. The client retries the
// user-facing action; the backend never retries on its own.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
