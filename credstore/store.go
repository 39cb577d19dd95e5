package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when no refresh credential is stored for the user.
var ErrNoSession = errors.New("no stored refresh credential")

// ErrTokenMismatch is returned by Rotate when the stored value differs from
// the provided one: the token was superseded by a later login or refresh.
var ErrTokenMismatch = errors.New("refresh credential mismatch")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

// Compare-and-swap: replace the stored value only if it equals the provided
// one. A mismatch leaves the entry intact so the current holder stays valid.
const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 2
`

var rotateLua = redis.NewScript(rotateScript)

// Store maps userID -> current refresh-token value in Redis. At most one
// entry exists per user; Save overwrites unconditionally (the revocation
// point for login), Rotate swaps atomically (the rotation point for refresh).
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] backed by the given Redis client. prefix sets
// the key namespace.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(userID string) string {
	return s.prefix + userID
}

// Save persists token as the single refresh credential for userID,
// overwriting any previous entry. Every refresh token issued before this
// call becomes unusable even though still cryptographically valid.
func (s *Store) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the stored refresh credential for userID, or [ErrNoSession].
func (s *Store) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.redis.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}

// Delete removes the entry for userID. A zero-effect delete returns
// [ErrNoSession] rather than succeeding silently, so callers can detect
// stale logout attempts.
func (s *Store) Delete(ctx context.Context, userID string) error {
	deleted, err := s.redis.Del(ctx, s.key(userID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if deleted == 0 {
		return ErrNoSession
	}
	return nil
}

// Rotate atomically replaces the stored credential with next, but only if
// the stored value equals provided. Returns [ErrNoSession] when no entry
// exists and [ErrTokenMismatch] when the entry was superseded; in the
// mismatch case the entry is left untouched, so of two concurrent refresh
// calls exactly one wins and the loser fails instead of silently issuing a
// doomed pair.
func (s *Store) Rotate(ctx context.Context, userID, provided, next string, ttl time.Duration) error {
	status, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.key(userID)},
		provided,
		next,
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch status {
	case rotateStatusNotFound:
		return ErrNoSession
	case rotateStatusMismatch:
		return ErrTokenMismatch
	case rotateStatusRotated:
		return nil
	default:
		return fmt.Errorf("%w: unexpected rotate status %d", ErrRedisUnavailable, status)
	}
}
