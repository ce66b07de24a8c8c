// Package portal is the Go client for the HR portal API. It owns the cookie
// jar and the CSRF token, so a caller gets the same session behavior a
// browser tab would: the session cookie rides along automatically and a
// failed CSRF check heals itself on the next attempt.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"hr-portal/internal/csrf"
	"hr-portal/internal/event"
	"hr-portal/internal/idle"
	"hr-portal/internal/model"
)

// Aliases for the types that cross the SDK boundary. The implementation
// lives under internal/, so these are the names importers get to use.
type (
	User        = model.PublicUser
	Identity    = model.MeData
	IdleConfig  = idle.Config
	IdleMonitor = idle.Monitor
	EventBus    = event.Bus
	Activity    = event.Activity
)

// NewEventBus returns an in-process bus suitable for wiring an idle monitor.
func NewEventBus() EventBus {
	return event.NewBus()
}

type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	csrfToken string
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func (c *Client) do(ctx context.Context, method string, path string, body any, withCSRF bool, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withCSRF {
		c.mu.Lock()
		token := c.csrfToken
		c.mu.Unlock()
		if token != "" {
			req.Header.Set(csrf.HeaderName, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// Track the freshest CSRF token the server hands out, including the
	// self-heal cookie on a rejected login.
	for _, cookie := range resp.Cookies() {
		if cookie.Name == csrf.CookieName {
			c.mu.Lock()
			c.csrfToken = cookie.Value
			c.mu.Unlock()
		}
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return &APIError{Status: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
		}
		return &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: "request failed"}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// APIError is a non-2xx API response surfaced to the caller.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// FetchCSRF primes the double-submit token before a login attempt.
func (c *Client) FetchCSRF(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/auth/csrf", nil, false, nil)
}

// Login authenticates and stores the session cookie in the jar. A CSRF
// rejection is retried once with the healed token from the failed response.
func (c *Client) Login(ctx context.Context, identifier string, password string) (User, error) {
	c.mu.Lock()
	primed := c.csrfToken != ""
	c.mu.Unlock()
	if !primed {
		if err := c.FetchCSRF(ctx); err != nil {
			return User{}, err
		}
	}

	body := model.LoginRequest{Identifier: identifier, Password: password}
	var user User
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, true, &user)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == "CSRF_FAILED" {
		err = c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, true, &user)
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout revokes the session server-side and drops the local CSRF token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, false, nil)
	c.mu.Lock()
	c.csrfToken = ""
	c.mu.Unlock()
	return err
}

// CurrentIdentity fetches the identity payload. It satisfies
// guard.IdentityClient so page guards can be built directly over a Client.
func (c *Client) CurrentIdentity(ctx context.Context) (*Identity, error) {
	var me Identity
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, false, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// NewIdleMonitor builds an auto-logout monitor whose fire hooks log this
// client out. redirect receives the post-logout destination.
func (c *Client) NewIdleMonitor(bus EventBus, cfg IdleConfig, redirect func(destination string)) *IdleMonitor {
	hooks := idle.Hooks{
		Logout: func(ctx context.Context) error {
			return c.Logout(ctx)
		},
		Redirect: redirect,
	}
	return idle.NewMonitor(bus, cfg, hooks)
}
