package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks input that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMissingCredentials is returned by Login when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrMissingAdminFields is returned by CreateAdmin when a required field is empty.
	ErrMissingAdminFields = errors.New("missing required admin fields")
	// ErrDuplicateAccount is returned when the email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidVerificationCode covers a wrong email, a wrong code and an
	// already verified account.
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	// ErrTooManyAttempts is returned when the attempt policy rejects a request.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrStorageDisabled is returned by image operations without an object store.
	ErrStorageDisabled = errors.New("image storage is not configured")
	// ErrImageNotFound is returned when a car has no stored image.
	ErrImageNotFound = errors.New("image not found")
)

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}
