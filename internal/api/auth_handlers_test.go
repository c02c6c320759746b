package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

func TestRegisterEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp := registerUser(t, server, "reader@example.com")

	assert.Equal(t, "reader@example.com", resp.User.Email)
	assert.Empty(t, resp.User.PasswordHash)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", service.RegisterRequest{
		Email:    "reader@example.com",
		Password: "another password here",
		Name:     "Impostor",
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestRegisterEndpoint_InvalidBody(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/login", "", service.LoginRequest{
		Email:    "reader@example.com",
		Password: "correct horse battery staple",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*service.AuthResponse](t, w)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.Positive(t, env.Data.ExpiresIn)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/login", "", service.LoginRequest{
		Email:    "reader@example.com",
		Password: "not the password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", service.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*service.AuthResponse](t, w)
	require.NotNil(t, env.Data)
	assert.NotEqual(t, registered.RefreshToken, env.Data.RefreshToken)

	// The rotated-out token no longer works.
	w = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", service.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/auth/logout", "", service.LogoutRequest{
		RefreshToken: registered.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", service.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUser(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/users/me", registered.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*domain.User](t, w)
	require.NotNil(t, env.Data)
	assert.Equal(t, registered.User.ID, env.Data.ID)
	assert.Empty(t, env.Data.PasswordHash)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	newName := "Renamed Reader"
	w := doJSON(t, server, http.MethodPatch, "/api/users/me", registered.AccessToken, service.UpdateProfileRequest{
		Name: &newName,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[*domain.User](t, w)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Renamed Reader", env.Data.Name)
}

func TestListSessionsEndpoint(t *testing.T) {
	server := setupTestServer(t)
	registered := registerUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/users/me/sessions", registered.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[[]*domain.Session](t, w)
	require.Len(t, env.Data, 1)
	assert.Empty(t, env.Data[0].RefreshTokenHash)
}
