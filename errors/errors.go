/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a named table or backend is not known
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when registering a name that is already taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput is returned when query or configuration validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidToken is returned when a continuation token cannot be decoded
	ErrInvalidToken = errors.New("invalid continuation token")

	// ErrUnsupportedBackend is returned when no backend is registered under a name
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrNoMoreSegments is returned by a pager that has already finished
	ErrNoMoreSegments = errors.New("no more segments")
)

// NotFoundError represents a lookup of an unknown name
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents a duplicate registration
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already registered", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// TokenError represents a continuation token that a backend could not decode
type TokenError struct {
	Backend string
	Err     error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: invalid continuation token", e.Backend)
	}
	return fmt.Sprintf("%s: invalid continuation token: %v", e.Backend, e.Err)
}

func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// UnsupportedBackendError represents a table configured with an unknown backend
type UnsupportedBackendError struct {
	Backend string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("unsupported backend %q", e.Backend)
}

func (e *UnsupportedBackendError) Is(target error) bool {
	return target == ErrUnsupportedBackend
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Type: kind, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind, key string) error {
	return &AlreadyExistsError{Type: kind, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewTokenError creates a new TokenError
func NewTokenError(backend string, err error) error {
	return &TokenError{Backend: backend, Err: err}
}

// NewUnsupportedBackendError creates a new UnsupportedBackendError
func NewUnsupportedBackendError(backend string) error {
	return &UnsupportedBackendError{Backend: backend}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidToken checks if an error is a continuation token error
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// IsUnsupportedBackend checks if an error is an unsupported backend error
func IsUnsupportedBackend(err error) bool {
	return errors.Is(err, ErrUnsupportedBackend)
}
