package models

import "errors"

// ValidationError carries a human readable description of the first
// field that failed its constraints. It is reported as HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a *ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var (
	// ErrNotFound is returned when a contact does not exist.
	ErrNotFound = errors.New("Not found")

	// ErrUserNotFound is returned when no user matches an email or a verification token.
	ErrUserNotFound = errors.New("User not found")

	// ErrEmailInUse is returned by signup for an already registered email.
	ErrEmailInUse = errors.New("Email in use")

	// ErrWrongCredentials is shared by the unknown-email and the wrong-password
	// branches of login, so callers cannot tell which one happened.
	ErrWrongCredentials = errors.New("Email or password is wrong")

	// ErrNotAuthorized is returned by the bearer authentication middleware.
	ErrNotAuthorized = errors.New("Not authorized")

	// ErrAlreadyVerified is returned when a verification email is requested for a verified user.
	ErrAlreadyVerified = errors.New("Verification has already been passed")

	// ErrNoAvatarFile is returned when the avatar form part is missing.
	ErrNoAvatarFile = NewValidationError("missing file avatar")

	// ErrMissingFavorite is returned when the favorite status body lacks the field.
	ErrMissingFavorite = NewValidationError("missing field favorite")

	// ErrMissingEmail is returned when a verification resend request lacks the email.
	ErrMissingEmail = NewValidationError("missing required field email")

	// ErrAvatarProcessing wraps decode, resize and persist failures of the avatar pipeline.
	ErrAvatarProcessing = errors.New("avatar processing failed")

	// ErrDuplicateEmail is the storage level unique-violation on users.email.
	ErrDuplicateEmail = errors.New("user with this email already exists")
)
