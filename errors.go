package sessionguard

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrInvalidCredentials deliberately conflates "unknown username" and
	// "wrong password"; login must not reveal which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means no session, an expired session, or a session
	// absent from both backends; the three are indistinguishable.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCSRFMismatch means the session is valid but the CSRF proof failed.
	ErrCSRFMismatch = errors.New("csrf token mismatch")

	// ErrPermissionDenied means the identity lacks the required capability.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUserNotFound is returned by credential stores for absent users.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned by PutUser when the username is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUsernameInvalid rejects empty or oversized usernames.
	ErrUsernameInvalid = errors.New("invalid username")

	// ErrRootProtected guards the bootstrap principal against deletion.
	ErrRootProtected = errors.New("root account cannot be deleted")

	// ErrPasswordPolicy rejects passwords below the configured minimum.
	ErrPasswordPolicy = errors.New("password policy violation")

	// ErrCredentialBackend wraps persistent-store failures of the
	// credential store. It never reaches a client response body.
	ErrCredentialBackend = errors.New("credential backend unavailable")
)
