package store

import "time"

// User is the persisted account record. Immutable after creation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Note is the persisted note record. Title is unique across the store.
type Note struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// NewNote carries the client-supplied fields for create and update.
type NewNote struct {
	Title          string
	Description    string
	CreatedAt      time.Time
	LastModifiedAt time.Time
}
