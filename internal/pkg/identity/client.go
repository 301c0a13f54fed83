package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/pkg/env"
)

// ErrInvalidToken means the identity service rejected the bearer token
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified principal returned by the identity service
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Client talks to the external identity service that owns accounts and
// sessions. This service only consumes verified identities.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates an identity client from the environment
func NewClient() *Client {
	return &Client{
		BaseURL: env.GetEnv("IDENTITY_URL", "http://localhost:8081"),
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// VerifyToken asks the identity service whether the bearer token is valid and
// returns the identity it belongs to. A 401 from the service maps to
// ErrInvalidToken; anything else is an infrastructure error.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var id Identity
		if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
			return nil, fmt.Errorf("decode identity response: %w", err)
		}
		if id.UserID == 0 {
			return nil, fmt.Errorf("identity response missing user id")
		}
		return &id, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}
}
