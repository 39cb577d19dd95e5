package token

import (
	"bytes"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is the uniform verification failure. Malformed input, a bad
// signature, a wrong signing algorithm, and an expired token all collapse
// into it so the cause is never leaked to the caller.
var ErrTokenInvalid = errors.New("invalid token")

// Config holds the signing material and lifetimes for both credential kinds.
// The two secrets must differ so that leaking the access secret cannot be
// used to forge long-lived refresh tokens, and vice versa.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Issuer signs and verifies access and refresh tokens. It is stateless and
// never touches storage; persisting refresh tokens is the Engine's job.
//
// Issuer instances are configured once and treated as immutable afterwards.
type Issuer struct {
	config Config
}

// NewIssuer validates cfg and returns an [Issuer].
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both signing secrets required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer identifier required")
	}
	return &Issuer{config: cfg}, nil
}

// IssueAccess signs a short-lived access token with audience set to userID.
// Errors indicate an internal signing fault, never bad input.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	return i.sign(userID, i.config.AccessSecret, i.config.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token with audience set to userID.
// The caller is responsible for persisting the result to the credential
// store; an unpersisted refresh token will never pass the store comparison.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return i.sign(userID, i.config.RefreshSecret, i.config.RefreshTTL)
}

// VerifyAccess checks signature and expiry against the access secret and
// returns the user ID carried in the audience claim.
func (i *Issuer) VerifyAccess(tokenStr string) (string, error) {
	return i.verify(tokenStr, i.config.AccessSecret)
}

// VerifyRefresh checks signature and expiry against the refresh secret only.
// It does not confirm store membership: every refresh verification must be
// followed by a credential-store comparison, which the Engine layers on top.
func (i *Issuer) VerifyRefresh(tokenStr string) (string, error) {
	return i.verify(tokenStr, i.config.RefreshSecret)
}

func (i *Issuer) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    i.config.Issuer,
		Audience:  jwt.ClaimStrings{userID},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		// jti makes every issued token distinct even within one clock
		// second; rotation depends on the new value differing from the old.
		ID: uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) verify(tokenStr string, secret []byte) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithExpirationRequired(),
	)

	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}

	if len(claims.Audience) == 0 || claims.Audience[0] == "" {
		return "", ErrTokenInvalid
	}
	return claims.Audience[0], nil
}
