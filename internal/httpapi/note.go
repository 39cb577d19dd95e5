package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/notevault/notevault/internal/httpapi/respond"
	"github.com/notevault/notevault/internal/store"
)

// NoteStore is the slice of the document store the note handlers need.
type NoteStore interface {
	CreateNote(n store.NewNote) (store.Note, error)
	NoteByID(id string) (store.Note, error)
	UpdateNote(id string, n store.NewNote) (store.Note, error)
	DeleteNote(id string) error
	ListNotes() ([]store.Note, error)
}

// NoteHandlers exposes note CRUD. All routes sit behind the auth gate.
type NoteHandlers struct {
	notes NoteStore
}

// NewNoteHandlers wires the document store into HTTP handlers.
func NewNoteHandlers(notes NoteStore) *NoteHandlers {
	return &NoteHandlers{notes: notes}
}

// Register mounts the note routes on mx.
func (h *NoteHandlers) Register(mx chi.Router) {
	mx.Post("/add", h.add)
	mx.Put("/edit/{id}", h.edit)
	mx.Get("/get/{id}", h.get)
	mx.Get("/list", h.list)
	mx.Delete("/delete/{id}", h.delete)
}

func (h *NoteHandlers) add(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeNote(w, r)
	if !ok {
		return
	}
	createdAt, lastModifiedAt, err := input.validate()
	if err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	note, err := h.notes.CreateNote(store.NewNote{
		Title:          input.Title,
		Description:    input.Description,
		CreatedAt:      createdAt,
		LastModifiedAt: lastModifiedAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, fmt.Sprintf("Note with the title: %s already exists.", input.Title))
			return
		}
		respond.Internal(w, err)
		return
	}

	respond.JSON(w, map[string]store.Note{"savedNote": note})
}

func (h *NoteHandlers) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	input, decoded := decodeNote(w, r)
	if !decoded {
		return
	}
	createdAt, lastModifiedAt, err := input.validate()
	if err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	note, err := h.notes.UpdateNote(id, store.NewNote{
		Title:          input.Title,
		Description:    input.Description,
		CreatedAt:      createdAt,
		LastModifiedAt: lastModifiedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "Note with the given ID doesn't exist.")
		case errors.Is(err, store.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, fmt.Sprintf("Note with the title: %s already exists.", input.Title))
		default:
			respond.Internal(w, err)
		}
		return
	}

	respond.JSON(w, map[string]store.Note{"updatedNote": note})
}

func (h *NoteHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.notes.NoteByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Note with the given ID doesn't exist.")
			return
		}
		respond.Internal(w, err)
		return
	}

	respond.JSON(w, map[string]store.Note{"note": note})
}

func (h *NoteHandlers) list(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListNotes()
	if err != nil {
		respond.Internal(w, err)
		return
	}

	// An empty store is a distinguishable empty-result signal, not an error.
	if len(notes) == 0 {
		respond.JSON(w, map[string]string{"message": "No notes found"})
		return
	}

	respond.JSON(w, map[string][]store.Note{"notes": notes})
}

func (h *NoteHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.notes.DeleteNote(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Note with the given ID doesn't exist")
			return
		}
		respond.Internal(w, err)
		return
	}

	respond.JSON(w, map[string]string{"message": "Note deleted successfully"})
}

func decodeNote(w http.ResponseWriter, r *http.Request) (noteInput, bool) {
	var input noteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, "invalid request body")
		return noteInput{}, false
	}
	return input, true
}

func noteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validNoteID(id) {
		respond.Error(w, http.StatusBadRequest, "Invalid note ID format")
		return "", false
	}
	return id, true
}
