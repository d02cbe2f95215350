// Package client implements the typed HTTP client for the portfolio REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is an explicit rejection from the API (4xx/5xx with a JSON body).
// Any other error returned by Client methods is a transport failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api rejected request (%d): %s", e.Status, e.Message)
}

// User is the wire shape of an account as the API serves it.
type User struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	Bio             string  `json:"bio,omitempty"`
	DateOfBirth     *string `json:"dateOfBirth,omitempty"`
	IsActive        bool    `json:"isActive"`
	IsEmailVerified bool    `json:"isEmailVerified"`
	LoginCount      int     `json:"loginCount"`
	LastLogin       *string `json:"lastLogin,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// AuthResult is the payload of successful login/register calls.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate is the subset of fields PUT /auth/profile accepts.
// Nil pointers are omitted from the request body.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

// Client talks to the portfolio REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, updates ProfileUpdate) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/profile", token, updates, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var rejection struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &rejection); err != nil {
			// non-JSON error body: treat as a broken transport, not a rejection
			return fmt.Errorf("unexpected response (%d) from %s", resp.StatusCode, path)
		}
		return &APIError{Status: resp.StatusCode, Message: rejection.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
