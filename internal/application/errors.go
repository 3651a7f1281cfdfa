package application

import "errors"

// Errors returned by application services in addition to the port and model
// sentinels they pass through.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidDate           = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrFederationUnavailable = errors.New("federated sign-in is not configured")
	ErrGeneratorUnavailable  = errors.New("idea generator is not configured")
	ErrGeneratorFailed       = errors.New("idea generator failed")
	ErrRateLimited           = errors.New("too many idea requests")
)
