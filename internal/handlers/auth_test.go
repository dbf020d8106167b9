package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greengrocer/produce_shop/internal/models"
	"github.com/greengrocer/produce_shop/internal/service/token"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":    "anna@example.com",
		"password": "password",
		"name":     "Anna",
	}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/auth/register", payload)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "anna@example.com", resp.User.Email)
	require.Equal(t, models.RoleCustomer, resp.User.Role)
	require.NotEmpty(t, resp.User.ID)
	require.NotEmpty(t, resp.Token)
	require.NotContains(t, rec.Body.String(), "password")

	userID, role, err := token.Parse(resp.Token, env.JWTSecret)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, userID)
	require.Equal(t, models.RoleCustomer, role)

	// Registering the same email again is rejected.
	_, c2 := env.doJSONRequest(http.MethodPost, "/api/v1/auth/register", payload)
	err = env.Auth.Register(c2)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "anna@example.com",
	})
	err := env.Auth.Register(c)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("anna@example.com", "password", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/auth/me", nil)
	env.asUser(c, user)
	require.NoError(t, env.Auth.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.User.ID)
	require.Equal(t, "anna@example.com", resp.User.Email)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestMeUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c.Set("userID", uint(999))
	c.Set("role", models.RoleCustomer)
	err := env.Auth.Me(c)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("anna@example.com", "password", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "anna@example.com",
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "anna@example.com", resp.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("anna@example.com", "password", models.RoleCustomer)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "anna@example.com",
		"password": "wrong",
	})
	err := env.Auth.Login(c)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	})
	err := env.Auth.Login(c)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}
