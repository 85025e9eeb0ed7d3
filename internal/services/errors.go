package services

import "errors"

// Sentinel errors returned by the service layer. The HTTP boundary maps
// each one to a status code; everything else surfaces as a generic 500.
var (
	// ErrEmailInUse is returned when registration targets an already taken email.
	ErrEmailInUse = errors.New("email in use")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password so that the two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("email or password invalid")
	// ErrUserNotFound is returned when a referenced account ID does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidSubscription is returned for an unknown subscription plan value.
	ErrInvalidSubscription = errors.New("invalid subscription value")
	// ErrBadImage is returned when an uploaded avatar cannot be decoded.
	ErrBadImage = errors.New("uploaded file is not a valid image")
)
