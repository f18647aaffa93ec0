// Package errors provides error handling for newspulse.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints surfaced to the operator
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrStorage) {
//	    // operator must intervene
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Sentinel errors for the pipeline's failure taxonomy.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrAuth indicates an external collaborator rejected credentials.
	// Fatal to that operation; surfaced to the operator.
	ErrAuth = New("authentication rejected")

	// ErrMalformedResponse indicates the model's output was not well-formed.
	// The caller logs it and treats the cycle as producing no posts.
	ErrMalformedResponse = New("malformed model response")

	// ErrStorage indicates the post store file is unreadable or corrupt.
	// Surfaced; the operator must intervene manually.
	ErrStorage = New("post store unreadable")

	// ErrPublish indicates a posting call failed. The post is marked
	// failed and the loop continues.
	ErrPublish = New("publish failed")

	// ErrInvalidDays indicates a caller passed a non-positive day count
	// to the distribution engine.
	ErrInvalidDays = New("day count must be positive")
)

// IsAuthError checks if an error is or wraps ErrAuth.
func IsAuthError(err error) bool {
	return err != nil && Is(err, ErrAuth)
}

// IsMalformedResponseError checks if an error is or wraps ErrMalformedResponse.
func IsMalformedResponseError(err error) bool {
	return err != nil && Is(err, ErrMalformedResponse)
}

// IsStorageError checks if an error is or wraps ErrStorage.
func IsStorageError(err error) bool {
	return err != nil && Is(err, ErrStorage)
}

// IsPublishError checks if an error is or wraps ErrPublish.
func IsPublishError(err error) bool {
	return err != nil && Is(err, ErrPublish)
}

// NewStorageError wraps an underlying error as a storage error with context.
func NewStorageError(err error, context string) error {
	return Wrap(Wrap(ErrStorage, err.Error()), context)
}

// NewMalformedResponseError creates a malformed-response error with a
// formatted message.
func NewMalformedResponseError(format string, args ...interface{}) error {
	return Wrap(ErrMalformedResponse, Newf(format, args...).Error())
}
