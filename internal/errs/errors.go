package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
	// ErrInsufficientFunds indicates a write would drive an account balance negative
	ErrInsufficientFunds = errors.New("insufficient_funds")
	// ErrAccountInUse indicates an account still has transactions referencing it
	ErrAccountInUse = errors.New("account_in_use")
	// ErrImmutable indicates an attempt to change immutable fields
	ErrImmutable = errors.New("immutable")
)
