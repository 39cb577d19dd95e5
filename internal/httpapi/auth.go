package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	notevault "github.com/notevault/notevault"
	"github.com/notevault/notevault/internal/httpapi/respond"
)

// AuthHandlers exposes the session-lifecycle endpoints.
type AuthHandlers struct {
	engine *notevault.Engine
}

// NewAuthHandlers wires the engine into HTTP handlers.
func NewAuthHandlers(engine *notevault.Engine) *AuthHandlers {
	return &AuthHandlers{engine: engine}
}

// Register mounts the auth routes on mx.
func (h *AuthHandlers) Register(mx chi.Router) {
	mx.Post("/register", h.register)
	mx.Post("/login", h.login)
	mx.Post("/refresh", h.refresh)
	mx.Post("/logout", h.logout)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	pair, err := h.engine.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, notevault.ErrEmailTaken) {
			email := notevault.NormalizeEmail(req.Email)
			respond.Error(w, http.StatusConflict, fmt.Sprintf("%s is already been registered", email))
			return
		}
		respond.Internal(w, err)
		return
	}

	respond.JSON(w, pair)
}

// login maps validation failures to 400 rather than register's 422. The
// upstream service behaved this way and clients depend on it, so the
// asymmetry is kept.
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid Username or Password")
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid Username or Password")
		return
	}

	pair, err := h.engine.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, notevault.ErrUserNotFound):
			respond.Error(w, http.StatusNotFound, "User not registered")
		case errors.Is(err, notevault.ErrInvalidCredentials):
			respond.Error(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			respond.Internal(w, err)
		}
		return
	}

	respond.JSON(w, pair)
}

func (h *AuthHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Bad Request")
		return
	}

	pair, err := h.engine.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, notevault.ErrMissingRefreshToken):
			respond.Error(w, http.StatusBadRequest, "Bad Request")
		case errors.Is(err, notevault.ErrUnauthorized):
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		default:
			respond.Internal(w, err)
		}
		return
	}

	respond.JSON(w, pair)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	err := h.engine.Logout(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, notevault.ErrMissingRefreshToken):
			respond.Error(w, http.StatusBadRequest, "Refresh token is required")
		case errors.Is(err, notevault.ErrUnauthorized):
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, notevault.ErrNoActiveSession):
			respond.Error(w, http.StatusNotFound, "Refresh token not found")
		default:
			respond.Internal(w, err)
		}
		return
	}

	respond.NoContent(w)
}
