package store

import (
	"context"

	"github.com/pkg/errors"

	notevault "github.com/notevault/notevault"
)

// Users adapts Storage to the notevault.UserProvider contract, translating
// the store's sentinels into the ones the Engine classifies against.
type Users struct {
	s *Storage
}

var _ notevault.UserProvider = (*Users)(nil)

// NewUsers wraps a Storage as a user provider.
func NewUsers(s *Storage) *Users {
	return &Users{s: s}
}

func (u *Users) CreateUser(_ context.Context, email, passwordHash string) (notevault.UserRecord, error) {
	user, err := u.s.CreateUser(email, passwordHash)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return notevault.UserRecord{}, notevault.ErrEmailTaken
		}
		return notevault.UserRecord{}, err
	}
	return toRecord(user), nil
}

func (u *Users) UserByEmail(_ context.Context, email string) (notevault.UserRecord, error) {
	user, err := u.s.UserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notevault.UserRecord{}, notevault.ErrUserNotFound
		}
		return notevault.UserRecord{}, err
	}
	return toRecord(user), nil
}

func (u *Users) UserByID(_ context.Context, id string) (notevault.UserRecord, error) {
	user, err := u.s.UserByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notevault.UserRecord{}, notevault.ErrUserNotFound
		}
		return notevault.UserRecord{}, err
	}
	return toRecord(user), nil
}

func toRecord(u User) notevault.UserRecord {
	return notevault.UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
}
