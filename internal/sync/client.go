// Package sync pushes and pulls the whole serialized AppState against a
// remote endpoint, keyed by an opaque user id. Last write wins; the pull
// side only replaces local state when the remote copy is newer.
package sync

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"axiom/internal/domain"
)

// ErrNotConfigured means no sync base URL is set.
var ErrNotConfigured = errors.New("sync is not configured; set sync.base_url in axiom.yml")

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type pushRequest struct {
	UserID   string          `json:"userId"`
	AppState domain.AppState `json:"appState"`
}

type pullResponse struct {
	AppState  *domain.AppState `json:"appState"`
	UpdatedAt string           `json:"updatedAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Push uploads the full state for the user.
func (c *Client) Push(ctx context.Context, userID string, state domain.AppState) error {
	if c.BaseURL == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(pushRequest{UserID: userID, AppState: state})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/sync/push", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("sync push: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return remoteError("push", res)
	}
	return nil
}

// Pull fetches the remote state for the user. A nil state with no error
// means the user has never pushed.
func (c *Client) Pull(ctx context.Context, userID string) (*domain.AppState, string, error) {
	if c.BaseURL == "" {
		return nil, "", ErrNotConfigured
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/sync/pull?userId="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, "", err
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("sync pull: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, "", remoteError("pull", res)
	}
	var out pullResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("decode pull response: %w", err)
	}
	return out.AppState, out.UpdatedAt, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, body)
	}
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func remoteError(op string, res *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(res.Body).Decode(&body)
	if body.Error != "" {
		return fmt.Errorf("sync %s: %s (status %d)", op, body.Error, res.StatusCode)
	}
	return fmt.Errorf("sync %s: status %d", op, res.StatusCode)
}

// NewUserID generates an opaque sync identity. There are no accounts; the
// id is the only credential, like a pastebin URL.
func NewUserID() string {
	max := new(big.Int).Lsh(big.NewInt(1), 64)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand failing means the platform is broken; fall back to time
		n = big.NewInt(time.Now().UnixNano())
	}
	return "user_" + n.Text(36) + time.Now().UTC().Format("0601021504")
}

// RemoteIsNewer compares two RFC3339 timestamps; unparseable or empty local
// timestamps count as older.
func RemoteIsNewer(remoteUpdatedAt, localUpdatedAt string) bool {
	remote, err := time.Parse(time.RFC3339, remoteUpdatedAt)
	if err != nil {
		return false
	}
	local, err := time.Parse(time.RFC3339, localUpdatedAt)
	if err != nil {
		return true
	}
	return remote.After(local)
}
