package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@x.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AuthResult{
			Token: "jwt-token",
			User:  User{ID: "7", Name: "Ann", Email: "a@x.com", Role: "user"},
		})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	result, err := c.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "jwt-token", result.Token)
	require.Equal(t, "7", result.User.ID)
}

func TestRejectionDecodesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Login(context.Background(), "a@x.com", "bad")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestNonJSONErrorBodyIsNotARejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream unavailable</html>"))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)

	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr), "a mangled body must read as a transport failure")
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)

	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestMeSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]User{"user": {ID: "7", Email: "a@x.com"}})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	user, err := c.Me(context.Background(), "jwt-token")
	require.NoError(t, err)
	require.Equal(t, "7", user.ID)
}

func TestUpdateProfileOmitsNilFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "gopher", body["bio"])
		_, hasName := body["name"]
		require.False(t, hasName)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]User{"user": {ID: "7", Bio: "gopher"}})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	bio := "gopher"
	user, err := c.UpdateProfile(context.Background(), "jwt-token", ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "gopher", user.Bio)
}
