// Package spond is the HTTP client for the Spond scheduling API. It logs in
// with account credentials, caches the session token and maps events and
// groups into domain types.
package spond

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/providers"
)

const (
	defaultBaseURL = "https://api.spond.com/core/v1"
	defaultTimeout = 15 * time.Second
	maxEventsPage  = 100
)

// Config controls how the client reaches the Spond API.
type Config struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches events and groups from Spond and maps them to domain models.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient httpDoer

	tokenMu sync.Mutex
	token   string
}

// NewClient constructs a Spond client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		email:      cfg.Email,
		password:   cfg.Password,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
	}
}

// FetchEvents retrieves events for the group within [from, to], including
// scheduled ones, with each invited member's response state resolved.
func (c *Client) FetchEvents(ctx context.Context, groupID string, from, to time.Time) ([]domain.Event, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sponds", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("groupId", groupID)
	q.Set("minStartTimestamp", from.UTC().Format(time.RFC3339))
	q.Set("maxEndTimestamp", to.UTC().Format(time.RFC3339))
	q.Set("includeScheduled", "true")
	q.Set("max", strconv.Itoa(maxEventsPage))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	var payload []eventResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(payload))
	for _, e := range payload {
		events = append(events, mapEvent(e))
	}
	return events, nil
}

// FetchGroups lists the groups the configured account belongs to.
func (c *Client) FetchGroups(ctx context.Context) ([]domain.Group, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/groups/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var payload []groupResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(payload))
	for _, g := range payload {
		groups = append(groups, mapGroup(g))
	}
	return groups, nil
}

// ensureToken logs in once and reuses the session token for later calls.
// A 401 on a data call is not retried here; the next sync run logs in again.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(loginRequest{Email: c.email, Password: c.password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spond login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("spond login: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("spond login: %w", err)
	}
	if payload.LoginToken == "" {
		return "", fmt.Errorf("spond login: empty token in response")
	}
	c.token = payload.LoginToken
	return c.token, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    "spond rate limited",
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Session token expired; drop it so the next call logs in again.
		c.invalidateToken()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spond: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func parseRetryAfter(raw string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func (c *Client) invalidateToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenMu.Unlock()
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(raw, "/")
}

func resolveHTTPClient(client *http.Client) httpDoer {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTimeout}
}
