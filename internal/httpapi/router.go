// Package httpapi dispatches parsed HTTP requests into the session engine
// and the document store, and owns the endpoint-to-status mapping.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	notevault "github.com/notevault/notevault"
	"github.com/notevault/notevault/internal/httpapi/respond"
	"github.com/notevault/notevault/middleware"
)

// NewRouter assembles the full route tree: public auth endpoints, note CRUD
// behind the authentication gate, and envelope-shaped fallbacks for unknown
// routes.
func NewRouter(engine *notevault.Engine, notes NoteStore) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Route("/auth", NewAuthHandlers(engine).Register)
	r.Route("/note", func(r chi.Router) {
		r.Use(middleware.Guard(engine))
		NewNoteHandlers(notes).Register(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
