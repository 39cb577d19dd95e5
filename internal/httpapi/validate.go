package httpapi

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const minPasswordLength = 8

// validateCredentials enforces the register/login input schema: a well-formed
// email and a password of at least 8 characters.
func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New(`"email" is required`)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New(`"email" must be a valid email`)
	}
	if password == "" {
		return errors.New(`"password" is required`)
	}
	if len(password) < minPasswordLength {
		return errors.New(`"password" length must be at least 8 characters long`)
	}
	return nil
}

// noteInput is the client-supplied note schema for add and edit.
type noteInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	CreatedAt      string `json:"createdAt"`
	LastModifiedAt string `json:"lastModifiedAt"`
}

// validate checks required fields and date well-formedness, returning the
// parsed timestamps on success.
func (n noteInput) validate() (createdAt, lastModifiedAt time.Time, err error) {
	if strings.TrimSpace(n.Title) == "" {
		return time.Time{}, time.Time{}, errors.New(`"title" is required`)
	}
	if strings.TrimSpace(n.Description) == "" {
		return time.Time{}, time.Time{}, errors.New(`"description" is required`)
	}
	createdAt, err = parseDate(n.CreatedAt, "createdAt")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	lastModifiedAt, err = parseDate(n.LastModifiedAt, "lastModifiedAt")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return createdAt, lastModifiedAt, nil
}

func parseDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.Errorf("%q is required", field)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Errorf("%q must be a valid RFC 3339 date", field)
	}
	return t, nil
}

// validNoteID reports whether id has the uuid shape the store issues.
func validNoteID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
