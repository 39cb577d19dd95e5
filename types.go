package notevault

import "context"

// TokenPair carries the two credentials returned by every successful
// Register, Login, and Refresh call.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserRecord is the account record returned by [UserProvider].
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
}

// UserProvider is the interface callers implement to connect the Engine to
// their user database. Implementations must return [ErrEmailTaken] (possibly
// wrapped) when CreateUser hits the unique-email constraint and
// [ErrUserNotFound] when a lookup misses; the Engine classifies with
// errors.Is and treats everything else as an internal fault.
type UserProvider interface {
	CreateUser(ctx context.Context, email, passwordHash string) (UserRecord, error)
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
	UserByID(ctx context.Context, id string) (UserRecord, error)
}

// SessionState is the per-user session state machine made explicit. A user
// is in StateActiveSession exactly while the credential store holds a
// refresh-token entry for them.
type SessionState int

const (
	// StateNoSession means no refresh credential is stored for the user.
	StateNoSession SessionState = iota
	// StateActiveSession means a single refresh credential is stored and valid.
	StateActiveSession
)

func (s SessionState) String() string {
	if s == StateActiveSession {
		return "active"
	}
	return "none"
}
