package apperrors

import (
	"errors"
	"fmt"

	"github.com/tnslabs/waconsole/internal/models"
)

// Sentinel errors for common backend failure conditions. Call sites wrap
// them with %w so errors.Is keeps working through the chain.
var (
	// ErrUnauthorized indicates the session or bearer token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrBadRequest indicates the backend rejected the request payload.
	ErrBadRequest = errors.New("bad request")
	// ErrBackend indicates a generic backend-side failure.
	ErrBackend = errors.New("backend error")
	// ErrMediaTooLarge indicates an attachment above the upload ceiling.
	ErrMediaTooLarge = errors.New("media file too large")
)

// DuplicateContactError is the structured HTTP 409 case on contact
// creation. It carries the existing record so the caller can offer a
// "go to existing contact" recovery action instead of a generic message.
type DuplicateContactError struct {
	Existing models.Contact
}

func (e *DuplicateContactError) Error() string {
	return fmt.Sprintf("contact already exists: %s (%s)", e.Existing.DisplayName(), e.Existing.PhoneNumber)
}

// AsDuplicateContact unwraps err into a DuplicateContactError, if it is one.
func AsDuplicateContact(err error) (*DuplicateContactError, bool) {
	var dup *DuplicateContactError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
