package notevault

import "errors"

var (
	// ErrUnauthorized is returned for any bad, expired, forged, or superseded
	// credential. The underlying cause is deliberately not exposed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login on a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by Login when no account exists for the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Register when the email is already claimed.
	ErrEmailTaken = errors.New("email already registered")
	// ErrMissingRefreshToken is returned by Refresh and Logout when no token
	// was supplied at all.
	ErrMissingRefreshToken = errors.New("refresh token required")
	// ErrNoActiveSession is returned by Logout when the store delete affected
	// zero entries: the user was already logged out or the token was already
	// rotated elsewhere.
	ErrNoActiveSession = errors.New("no active session")
	// ErrEngineNotReady is returned when a method is called on an Engine that
	// was not produced by Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)
