// Package client is a typed HTTP client for the NMS REST API, covering the
// calls the seeder makes: readiness probe, login, credential profile create,
// discovery profile create.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sethvargo/go-retry"
)

// API paths. The two seeder variants create discovery profiles through
// different paths; both are kept as-is rather than unified.
const (
	LoginPath             = "/login"
	CredentialsPath       = "/api/v1/credentials"
	DiscoveryPath         = "/api/v1/discovery"
	DiscoveryProfilesPath = "/api/v1/discovery_profiles"
)

// Client talks to one NMS server. The bearer token, if any, is set once by
// Login and read-only afterwards.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *slog.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cleanhttp.DefaultClient(),
		logger:  logger,
	}
}

// WaitReady polls path until the server answers, for at most attempts tries
// spaced interval apart. Any HTTP response counts as reachable, including
// error statuses; only connection-level failures are retried.
func (c *Client) WaitReady(ctx context.Context, path string, attempts int, interval time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(interval))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Debug("Server not reachable yet", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		resp.Body.Close()
		return nil
	})
	if err != nil {
		return fmt.Errorf("server at %s not reachable after %d attempts: %w", c.baseURL, attempts, err)
	}
	return nil
}

// Login authenticates against the server and holds the returned bearer token
// for all subsequent requests. A non-200 response is returned as *APIError so
// the caller can echo the response body before exiting.
func (c *Client) Login(ctx context.Context, username, password string) error {
	raw, err := c.postJSON(ctx, LoginPath, LoginRequest{Username: username, Password: password}, http.StatusOK)
	if err != nil {
		return err
	}

	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("login response missing token: %s", raw)
	}
	c.token = resp.Token
	c.logger.Info("Authenticated", "username", username)
	return nil
}

// CreateCredentialProfile creates a credential profile and returns the
// server-assigned identifier. accept lists the statuses treated as success;
// any other status yields *APIError. A success response without an id is an
// error the caller must treat as fatal.
func (c *Client) CreateCredentialProfile(ctx context.Context, req CredentialProfileRequest, accept ...int) (string, error) {
	raw, err := c.postJSON(ctx, CredentialsPath, req, accept...)
	if err != nil {
		return "", err
	}
	return extractID("credential profile", raw)
}

// CreateDiscoveryProfile creates a discovery profile through the given path
// and returns the server-assigned identifier.
func (c *Client) CreateDiscoveryProfile(ctx context.Context, path string, req DiscoveryProfileRequest, accept ...int) (string, error) {
	raw, err := c.postJSON(ctx, path, req, accept...)
	if err != nil {
		return "", err
	}
	return extractID("discovery profile", raw)
}

// postJSON submits body to path and returns the response body when the status
// is in accept, or *APIError when it is not.
func (c *Client) postJSON(ctx context.Context, path string, body any, accept ...int) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	for _, status := range accept {
		if resp.StatusCode == status {
			return raw, nil
		}
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
}

// extractID pulls the id field out of a create response.
func extractID(resource string, raw []byte) (string, error) {
	var resp CreateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse %s response: %w", resource, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%s response missing id: %s", resource, raw)
	}
	return resp.ID, nil
}
