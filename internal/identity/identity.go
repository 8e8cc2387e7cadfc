// Package identity talks to the external identity provider: it verifies
// provider-issued session tokens and reads a user's organization
// memberships for provisioning checks.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrInvalidToken = errors.New("identity: invalid session token")
	ErrUserNotFound = errors.New("identity: user not found")
)

// Membership is one organization membership as reported by the provider.
// Role is the provider's own role string, not a local rbac role.
type Membership struct {
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// AdminEquivalent reports whether the provider-side role qualifies the
// user to bootstrap themselves as the organization's first admin.
func (m Membership) AdminEquivalent() bool {
	return m.Role == "admin" || m.Role == "owner"
}

// Client is the directory surface the service consumes. Implemented over
// HTTP in production and faked in tests.
type Client interface {
	// VerifySessionToken resolves a provider session token to a user id.
	VerifySessionToken(ctx context.Context, token string) (string, error)

	// OrganizationMemberships lists the organizations the user belongs to
	// according to the provider.
	OrganizationMemberships(ctx context.Context, userID string) ([]Membership, error)
}

// HTTPClient calls the identity provider's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) VerifySessionToken(ctx context.Context, token string) (string, error) {
	body := struct {
		Token string `json:"token"`
	}{Token: token}

	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/verify", body, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", ErrInvalidToken
	}
	return out.UserID, nil
}

func (c *HTTPClient) OrganizationMemberships(ctx context.Context, userID string) ([]Membership, error) {
	var out struct {
		Memberships []Membership `json:"memberships"`
	}
	path := "/v1/users/" + url.PathEscape(userID) + "/memberships"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Memberships, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("identity: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidToken
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("identity: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("identity: decode response: %w", err)
		}
	}
	return nil
}
