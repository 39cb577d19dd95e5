package notevault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notevault/notevault/credstore"
	"github.com/notevault/notevault/token"
)

// Engine orchestrates the token issuer, the credential store, and the user
// provider into the four session-lifecycle operations. Construct it through
// [Builder.Build]; the zero value is not usable.
type Engine struct {
	config Config
	issuer *token.Issuer
	creds  *credstore.Store
	hasher passwordHasher
	users  UserProvider
}

// passwordHasher is satisfied by password.Hasher; kept as an interface so
// engine tests can substitute a cheap fake.
type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Register creates an account for email and starts its first session.
// The email is lowercase-normalized before it reaches the provider. A
// duplicate email fails with [ErrEmailTaken] and issues no credentials.
func (e *Engine) Register(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	email = NormalizeEmail(email)

	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := e.users.CreateUser(ctx, email, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return e.startSession(ctx, user.ID)
}

// Login verifies the password for email and starts a fresh session. The
// store write overwrites any existing entry for the user. This is the
// revocation point: every previously issued refresh token becomes unusable
// even though still cryptographically valid, because the store comparison
// will fail.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	match, err := e.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return e.startSession(ctx, user.ID)
}

// Refresh exchanges a valid refresh token for a brand-new access+refresh
// pair, rotating the stored credential on every use. A missing entry or a
// superseded value both collapse into [ErrUnauthorized]: that single result
// covers logged-out users, rotated tokens, and unknown users alike. The
// rotation is a compare-and-swap, so of two concurrent calls with the same
// token exactly one succeeds and the other fails here.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.creds == nil {
		return nil, ErrEngineNotReady
	}
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	userID, err := e.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	nextRefresh, err := e.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	err = e.creds.Rotate(ctx, userID, refreshToken, nextRefresh, e.config.Token.RefreshTTL)
	if err != nil {
		if errors.Is(err, credstore.ErrNoSession) || errors.Is(err, credstore.ErrTokenMismatch) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("rotating refresh credential: %w", err)
	}

	access, err := e.issuer.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: nextRefresh}, nil
}

// Logout verifies the refresh token and deletes the user's stored
// credential, ending the session. A zero-effect delete surfaces as
// [ErrNoActiveSession] so callers can detect stale logout attempts.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.creds == nil {
		return ErrEngineNotReady
	}
	if refreshToken == "" {
		return ErrMissingRefreshToken
	}

	userID, err := e.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return ErrUnauthorized
	}

	if err := e.creds.Delete(ctx, userID); err != nil {
		if errors.Is(err, credstore.ErrNoSession) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("deleting refresh credential: %w", err)
	}
	return nil
}

// VerifyAccess validates an access token for request authentication and
// returns the user ID it was issued to. Stateless: signature and expiry
// only, no store round-trip. Any failure is [ErrUnauthorized].
func (e *Engine) VerifyAccess(tokenStr string) (string, error) {
	if e == nil || e.issuer == nil {
		return "", ErrEngineNotReady
	}
	userID, err := e.issuer.VerifyAccess(tokenStr)
	if err != nil {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// SessionState reports which side of the NoSession/ActiveSession state
// machine the user is currently on.
func (e *Engine) SessionState(ctx context.Context, userID string) (SessionState, error) {
	if e == nil || e.creds == nil {
		return StateNoSession, ErrEngineNotReady
	}
	_, err := e.creds.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, credstore.ErrNoSession) {
			return StateNoSession, nil
		}
		return StateNoSession, fmt.Errorf("reading credential store: %w", err)
	}
	return StateActiveSession, nil
}

// startSession issues a fresh access+refresh pair and persists the refresh
// token as the user's single stored credential. Writes complete even if the
// request context was cancelled mid-flight, so the store and the issued
// token set cannot drift apart on client disconnect.
func (e *Engine) startSession(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := e.issuer.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refresh, err := e.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	if err := e.creds.Save(context.WithoutCancel(ctx), userID, refresh, e.config.Token.RefreshTTL); err != nil {
		return nil, fmt.Errorf("persisting refresh credential: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// NormalizeEmail lowercases and trims an email address. Registration and
// login must agree on this form or lookups against the unique-email index
// would miss.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
