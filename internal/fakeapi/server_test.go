package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token"`
	Data    map[string]any `json:"data"`
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) (int, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestLogin(t *testing.T) {
	s := New()
	id, err := s.SeedUser("user@example.com", "secret123", "", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	code, resp := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "User@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, id, resp.Data["id"])
	assert.Equal(t, "Ada", resp.Data["name"])
	assert.Equal(t, MembershipMember, resp.Data["membershipType"])
	assert.Equal(t, 1, s.Hits(http.MethodPost, "/api/auth/login"))
}

func TestLogin_Failures(t *testing.T) {
	s := New()
	_, err := s.SeedUser("user@example.com", "secret123", "", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    map[string]string
		code    int
		message string
	}{
		{name: "wrong password", body: map[string]string{"email": "user@example.com", "password": "nope"}, code: http.StatusUnauthorized, message: "Invalid credentials"},
		{name: "unknown email", body: map[string]string{"email": "ghost@example.com", "password": "secret123"}, code: http.StatusUnauthorized, message: "Invalid credentials"},
		{name: "missing password", body: map[string]string{"email": "user@example.com"}, code: http.StatusBadRequest, message: "Please provide an email and password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doJSON(t, s, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.code, code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, resp.Token)
		})
	}
}

func TestRegister(t *testing.T) {
	s := New()

	code, resp := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":          "new@example.com",
		"name":           "Grace",
		"password":       "secret123",
		"phone":          "555-0100",
		"membershipType": MembershipStaff,
	})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Grace", resp.Data["name"])
	assert.Equal(t, "555-0100", resp.Data["phone"])
	assert.Equal(t, MembershipMember, resp.Data["membershipType"], "clients cannot self-assign membership type")
	assert.NotContains(t, resp.Data, "password")

	code, resp = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "new@example.com", "name": "Again", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already exists", resp.Message)
}

func TestRegister_Validation(t *testing.T) {
	s := New()

	code, resp := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "not-an-email", "name": "X", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, resp.Message)
}

func TestMe(t *testing.T) {
	s := New()
	id, err := s.SeedUser("staff@example.com", "secret123", MembershipStaff, nil)
	require.NoError(t, err)
	token, err := s.IssueToken(id)
	require.NoError(t, err)

	code, resp := doJSON(t, s, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, resp.Data["id"])
	assert.Equal(t, MembershipStaff, resp.Data["membershipType"])
}

func TestMe_Unauthorized(t *testing.T) {
	s := New()
	id, err := s.SeedUser("gone@example.com", "secret123", "", nil)
	require.NoError(t, err)
	token, err := s.IssueToken(id)
	require.NoError(t, err)
	s.DeleteUser(id)

	foreign, err := New(WithSecret("other")).signer.GenerateToken("x", "x@example.com", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{name: "no token", token: "", message: "Not authorized, no token"},
		{name: "garbage token", token: "garbage", message: "Not authorized, token failed"},
		{name: "foreign signature", token: foreign, message: "Not authorized, token failed"},
		{name: "deleted member", token: token, message: "Member not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doJSON(t, s, http.MethodGet, "/api/auth/me", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	s := New()
	id, err := s.SeedUser("user@example.com", "secret123", "", map[string]any{"name": "A"})
	require.NoError(t, err)
	token, err := s.IssueToken(id)
	require.NoError(t, err)

	code, resp := doJSON(t, s, http.MethodPut, "/api/members/profile", token, map[string]any{
		"name":           "B",
		"membershipType": MembershipStaff,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"name": "B"}, resp.Data)

	profile, ok := s.Profile(id)
	require.True(t, ok)
	assert.Equal(t, "B", profile["name"])
	assert.Equal(t, MembershipMember, profile["membershipType"])
}

func TestChangePassword(t *testing.T) {
	s := New()
	id, err := s.SeedUser("user@example.com", "secret123", "", nil)
	require.NoError(t, err)
	token, err := s.IssueToken(id)
	require.NoError(t, err)

	code, resp := doJSON(t, s, http.MethodPut, "/api/members/password", token, map[string]string{
		"currentPassword": "wrong", "newPassword": "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Current password is incorrect", resp.Message)

	code, _ = doJSON(t, s, http.MethodPut, "/api/members/password", token, map[string]string{
		"currentPassword": "secret123", "newPassword": "newsecret",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "user@example.com", "password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestFailNext(t *testing.T) {
	s := New()

	s.FailNext(http.MethodGet, "/health", http.StatusServiceUnavailable)
	code, _ := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, s.Hits(http.MethodGet, "/health"))
}
