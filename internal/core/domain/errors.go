package domain

import "errors"

// Error taxonomy for the session lifecycle. The auth client and the session
// manager resolve every upstream failure into one of these before it reaches
// a caller; raw transport errors never cross the core boundary.
var (
	// ErrInvalidCredentials covers a rejected login. The message is
	// deliberately generic: it must not reveal whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the access token was rejected mid-session.
	// The session manager responds with one refresh attempt.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired means the refresh token was rejected. The session
	// is gone; callers must treat the user as logged out.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoSession is returned by operations that require an established
	// session when none exists.
	ErrNoSession = errors.New("no active session")

	// ErrForbidden means the caller is authenticated but lacks the role.
	ErrForbidden = errors.New("access forbidden")

	// ErrNetworkFailure wraps transient transport failures. Login and
	// refresh callers may retry; logout proceeds locally regardless.
	ErrNetworkFailure = errors.New("network failure")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)
