// AngelaMos | 2026
// handler_test.go

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/auth-service/internal/auth"
)

func newTestRouter(store *fakeUserStore) chi.Router {
	handler := auth.NewHandler(auth.NewService(store))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func doJSON(
	t *testing.T,
	router chi.Router,
	method, path, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	router := newTestRouter(newFakeUserStore())

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"ann@x.com","password":"pw123secret","name":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created auth.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "user", created.Role)

	// The password hash must never appear in a response body.
	require.NotContains(t, rec.Body.String(), "argon2id")
	require.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ann@x.com","password":"pw123secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var loggedIn auth.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loggedIn))
	require.Equal(t, created.ID, loggedIn.ID)
	require.NotNil(t, loggedIn.LastLoginAt)
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	router := newTestRouter(newFakeUserStore())

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"ann@x.com","password":"pw123secret","name":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ann@x.com","password":"not the one"}`)
	unknownEmail := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ghost@x.com","password":"not the one"}`)

	// Wrong password and unknown email are indistinguishable.
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	router := newTestRouter(newFakeUserStore())

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"ann@x.com","password":"pw123secret","name":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"ann@x.com","password":"otherSecret1","name":"Another"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "DUPLICATE_EMAIL")
}

func TestHandler_Register_Validation(t *testing.T) {
	router := newTestRouter(newFakeUserStore())

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"not-an-email","password":"short","name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"ann@x.com","password":"pw123secret","name":"Ann","role":"root"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/register", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
