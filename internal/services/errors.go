package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
)

var (
	ErrInvalidBody        = errors.New("the request body is invalid")
	ErrInvalidQuery       = errors.New("invalid query parameters")
	ErrForbidden          = errors.New("you don't have permission on this resource")
	ErrEnrollmentConflict = errors.New("enrollment data is invalid")
	ErrTooManyRequests    = errors.New("too many requests")

	ErrNotFound           = repositories.ErrNotFound
	ErrUnauthenticated    = identity.ErrUnauthenticated
	ErrInvalidCredentials = identity.ErrInvalidCredentials

	// ErrUpstream marks failures of the identity provider, entity store or
	// blob store
	ErrUpstream = identity.ErrUpstream
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// PermissionError explains which rule denied an action
type PermissionError struct {
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s: %s", e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

func NewPermissionError(resource, action, reason string) *PermissionError {
	return &PermissionError{Resource: resource, Action: action, Reason: reason}
}

// RateLimitError carries the wait time for a throttled login
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %ds", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrTooManyRequests
}

// storeError keeps not-found as is and marks everything else as upstream
func storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
