package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	notevault "github.com/notevault/notevault"
	"github.com/notevault/notevault/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := store.NewTempStorage()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	engine, err := notevault.New().
		WithConfig(notevault.Config{
			Token: notevault.TokenConfig{
				AccessSecret:  []byte("api-test-access-secret"),
				RefreshSecret: []byte("api-test-refresh-secret"),
				AccessTTL:     time.Hour,
				RefreshTTL:    24 * time.Hour,
			},
			Password: notevault.PasswordConfig{
				Memory:      8 * 1024,
				Time:        1,
				Parallelism: 1,
				SaltLength:  16,
				KeyLength:   16,
			},
		}).
		WithRedis(rdb).
		WithUserProvider(store.NewUsers(db)).
		Build()
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(engine, db))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]json.RawMessage{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func errPayload(t *testing.T, body map[string]json.RawMessage) (int, string) {
	t.Helper()
	var payload struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.Contains(t, body, "err")
	require.NoError(t, json.Unmarshal(body["err"], &payload))
	return payload.Status, payload.Message
}

func tokenPair(t *testing.T, body map[string]json.RawMessage) (access, refresh string) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body["accessToken"], &access))
	require.NoError(t, json.Unmarshal(body["refreshToken"], &refresh))
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func registerUser(t *testing.T, srv *httptest.Server, email, password string) (access, refresh string) {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)
	return tokenPair(t, body)
}

func noteBody(title string) map[string]string {
	now := time.Now().UTC().Format(time.RFC3339)
	return map[string]string{
		"title":          title,
		"description":    "description of " + title,
		"createdAt":      now,
		"lastModifiedAt": now,
	}
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)

	access, refresh := registerUser(t, srv, "a@x.com", "password1")
	require.NotEqual(t, access, refresh)

	// Same email again, any casing.
	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]string{
		"email":    "A@X.com",
		"password": "password2",
	})
	require.Equal(t, http.StatusConflict, status)
	code, msg := errPayload(t, body)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "a@x.com is already been registered", msg)
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"password": "password1"}},
		{"malformed email", map[string]string{"email": "not-an-email", "password": "password1"}},
		{"missing password", map[string]string{"email": "a@x.com"}},
		{"short password", map[string]string{"email": "a@x.com", "password": "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, status)
			code, _ := errPayload(t, body)
			require.Equal(t, http.StatusUnprocessableEntity, code)
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "a@x.com", "password1")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, status)
	tokenPair(t, body)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusNotFound, status)
	_, msg := errPayload(t, body)
	require.Equal(t, "User not registered", msg)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	_, msg = errPayload(t, body)
	require.Equal(t, "Invalid username or password", msg)

	// Schema failures report 400 here, not register's 422.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusBadRequest, status)
	_, msg = errPayload(t, body)
	require.Equal(t, "Invalid Username or Password", msg)
}

func TestRefreshEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, refresh := registerUser(t, srv, "a@x.com", "password1")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "", map[string]string{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusOK, status)
	_, rotated := tokenPair(t, body)
	require.NotEqual(t, refresh, rotated)

	// The replaced token is dead.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "", map[string]string{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusUnauthorized, status)
	_, msg := errPayload(t, body)
	require.Equal(t, "Unauthorized", msg)

	// Missing token is a schema failure.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestLogoutEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, refresh := registerUser(t, srv, "a@x.com", "password1")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/logout", bytes.NewReader(mustJSON(t, map[string]string{
		"refreshToken": refresh,
	})))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Second logout with the same token: the session is already gone.
	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/logout", "", map[string]string{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusNotFound, status)
	_, msg := errPayload(t, body)
	require.Equal(t, "Refresh token not found", msg)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/auth/logout", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, status)
	_, msg = errPayload(t, body)
	require.Equal(t, "Refresh token is required", msg)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestNoteRoutesRequireAccessToken(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/note/list", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	code, msg := errPayload(t, body)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Unauthorized", msg)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/note/list", "not.a.jwt", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestNoteCRUD(t *testing.T) {
	srv := newTestServer(t)
	access, _ := registerUser(t, srv, "a@x.com", "password1")

	// Empty store first.
	status, body := doJSON(t, http.MethodGet, srv.URL+"/note/list", access, nil)
	require.Equal(t, http.StatusOK, status)
	var msg string
	require.NoError(t, json.Unmarshal(body["message"], &msg))
	require.Equal(t, "No notes found", msg)

	// Create.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/note/add", access, noteBody("groceries"))
	require.Equal(t, http.StatusOK, status)
	var saved store.Note
	require.NoError(t, json.Unmarshal(body["savedNote"], &saved))
	require.NotEmpty(t, saved.ID)
	require.Equal(t, "groceries", saved.Title)

	// Duplicate title.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/note/add", access, noteBody("groceries"))
	require.Equal(t, http.StatusConflict, status)
	_, conflictMsg := errPayload(t, body)
	require.Equal(t, "Note with the title: groceries already exists.", conflictMsg)

	// Fetch.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/note/get/"+saved.ID, access, nil)
	require.Equal(t, http.StatusOK, status)
	var fetched store.Note
	require.NoError(t, json.Unmarshal(body["note"], &fetched))
	require.Equal(t, saved.ID, fetched.ID)

	// Edit.
	status, body = doJSON(t, http.MethodPut, srv.URL+"/note/edit/"+saved.ID, access, noteBody("errands"))
	require.Equal(t, http.StatusOK, status)
	var updated store.Note
	require.NoError(t, json.Unmarshal(body["updatedNote"], &updated))
	require.Equal(t, "errands", updated.Title)

	// List now holds the one note.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/note/list", access, nil)
	require.Equal(t, http.StatusOK, status)
	var notes []store.Note
	require.NoError(t, json.Unmarshal(body["notes"], &notes))
	require.Len(t, notes, 1)

	// Delete.
	status, body = doJSON(t, http.MethodDelete, srv.URL+"/note/delete/"+saved.ID, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["message"], &msg))
	require.Equal(t, "Note deleted successfully", msg)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/note/get/"+saved.ID, access, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestNoteValidation(t *testing.T) {
	srv := newTestServer(t)
	access, _ := registerUser(t, srv, "a@x.com", "password1")

	// Bad ID shape.
	status, body := doJSON(t, http.MethodGet, srv.URL+"/note/get/not-a-uuid", access, nil)
	require.Equal(t, http.StatusBadRequest, status)
	_, msg := errPayload(t, body)
	require.Equal(t, "Invalid note ID format", msg)

	// Missing fields.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/note/add", access, map[string]string{
		"title": "only a title",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	// Malformed date.
	bad := noteBody("dated")
	bad["createdAt"] = "yesterday"
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/note/add", access, bad)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	// Well-formed uuid that matches nothing.
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/note/get/00000000-0000-0000-0000-000000000000", access, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestUnknownRouteEnvelope(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/nope", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	code, msg := errPayload(t, body)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Not Found", msg)
}
