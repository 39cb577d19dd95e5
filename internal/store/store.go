// Package store is the bbolt-backed document store for users and notes.
// Records are JSON blobs keyed by uuid; uniqueness constraints (user email,
// note title) are enforced through index buckets inside the same write
// transaction.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	bktUsers        = []byte("users")
	bktUserEmailIdx = []byte("idx_user_email")
	bktNotes        = []byte("notes")
	bktNoteTitleIdx = []byte("idx_note_title")
)

// Storage is a wrapper around bolt.DB.
type Storage struct {
	db        *bolt.DB
	closeFunc func() error
}

// NewStorage opens (or creates) the database file at path.
func NewStorage(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt db")
	}
	return &Storage{
		db:        db,
		closeFunc: db.Close,
	}, nil
}

// NewTempStorage opens a throwaway database under the OS temp dir and removes
// the file on Close. Test helper.
func NewTempStorage() (*Storage, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("notevault-%s.db", uuid.New().String()))
	storage, err := NewStorage(path)
	if err != nil {
		return nil, err
	}
	originalCloseFunc := storage.closeFunc
	storage.closeFunc = func() error {
		if err := originalCloseFunc(); err != nil {
			return err
		}
		return os.Remove(path)
	}
	return storage, nil
}

// Close closes the storage.
func (s *Storage) Close() error {
	return s.closeFunc()
}

// CreateUser inserts a user with the given (already normalized) email and
// password hash. Returns ErrAlreadyExists when the email is claimed.
func (s *Storage) CreateUser(email, passwordHash string) (User, error) {
	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		users, err := tx.CreateBucketIfNotExists(bktUsers)
		if err != nil {
			return err
		}
		emailIdx, err := tx.CreateBucketIfNotExists(bktUserEmailIdx)
		if err != nil {
			return err
		}

		if emailIdx.Get([]byte(email)) != nil {
			return ErrAlreadyExists
		}

		raw, err := json.Marshal(user)
		if err != nil {
			return errors.Wrap(err, "encoding user")
		}
		if err := users.Put([]byte(user.ID), raw); err != nil {
			return err
		}
		return emailIdx.Put([]byte(email), []byte(user.ID))
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UserByEmail looks a user up through the unique-email index.
func (s *Storage) UserByEmail(email string) (User, error) {
	var user User
	err := s.db.View(func(tx *bolt.Tx) error {
		emailIdx := tx.Bucket(bktUserEmailIdx)
		if emailIdx == nil {
			return ErrNotFound
		}
		id := emailIdx.Get([]byte(email))
		if id == nil {
			return ErrNotFound
		}
		return getRecord(tx, bktUsers, id, &user)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UserByID fetches a user record by its uuid.
func (s *Storage) UserByID(id string) (User, error) {
	var user User
	err := s.db.View(func(tx *bolt.Tx) error {
		return getRecord(tx, bktUsers, []byte(id), &user)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// CreateNote inserts a note. Returns ErrAlreadyExists when a note with the
// same title exists; no second record is created in that case.
func (s *Storage) CreateNote(n NewNote) (Note, error) {
	note := Note{
		ID:             uuid.New().String(),
		Title:          n.Title,
		Description:    n.Description,
		CreatedAt:      n.CreatedAt,
		LastModifiedAt: n.LastModifiedAt,
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		notes, err := tx.CreateBucketIfNotExists(bktNotes)
		if err != nil {
			return err
		}
		titleIdx, err := tx.CreateBucketIfNotExists(bktNoteTitleIdx)
		if err != nil {
			return err
		}

		if titleIdx.Get([]byte(note.Title)) != nil {
			return ErrAlreadyExists
		}

		raw, err := json.Marshal(note)
		if err != nil {
			return errors.Wrap(err, "encoding note")
		}
		if err := notes.Put([]byte(note.ID), raw); err != nil {
			return err
		}
		return titleIdx.Put([]byte(note.Title), []byte(note.ID))
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// NoteByID fetches a note record by its uuid.
func (s *Storage) NoteByID(id string) (Note, error) {
	var note Note
	err := s.db.View(func(tx *bolt.Tx) error {
		return getRecord(tx, bktNotes, []byte(id), &note)
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// UpdateNote replaces the stored fields of the note with the given id.
// A title change re-checks uniqueness against the index.
func (s *Storage) UpdateNote(id string, n NewNote) (Note, error) {
	var note Note
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := getRecord(tx, bktNotes, []byte(id), &note); err != nil {
			return err
		}
		titleIdx := tx.Bucket(bktNoteTitleIdx)
		if titleIdx == nil {
			return ErrNotFound
		}

		if n.Title != note.Title {
			if titleIdx.Get([]byte(n.Title)) != nil {
				return ErrAlreadyExists
			}
			if err := titleIdx.Delete([]byte(note.Title)); err != nil {
				return err
			}
			if err := titleIdx.Put([]byte(n.Title), []byte(id)); err != nil {
				return err
			}
		}

		note.Title = n.Title
		note.Description = n.Description
		note.CreatedAt = n.CreatedAt
		note.LastModifiedAt = n.LastModifiedAt

		raw, err := json.Marshal(note)
		if err != nil {
			return errors.Wrap(err, "encoding note")
		}
		return tx.Bucket(bktNotes).Put([]byte(id), raw)
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// DeleteNote removes the note and its title index entry. Returns ErrNotFound
// when no note has the given id.
func (s *Storage) DeleteNote(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var note Note
		if err := getRecord(tx, bktNotes, []byte(id), &note); err != nil {
			return err
		}
		if titleIdx := tx.Bucket(bktNoteTitleIdx); titleIdx != nil {
			if err := titleIdx.Delete([]byte(note.Title)); err != nil {
				return err
			}
		}
		return tx.Bucket(bktNotes).Delete([]byte(id))
	})
}

// ListNotes returns every note. An empty store yields an empty slice, not an
// error.
func (s *Storage) ListNotes() ([]Note, error) {
	notes := make([]Note, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bktNotes)
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(_, raw []byte) error {
			var note Note
			if err := json.Unmarshal(raw, &note); err != nil {
				return errors.Wrap(err, "decoding note")
			}
			notes = append(notes, note)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func getRecord(tx *bolt.Tx, bucket, key []byte, out interface{}) error {
	bkt := tx.Bucket(bucket)
	if bkt == nil {
		return ErrNotFound
	}
	raw := bkt.Get(key)
	if raw == nil {
		return ErrNotFound
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decoding record")
}
