// Package groupme is a minimal client for the GroupMe v3 bot API.
package groupme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.groupme.com/v3"

// Client talks to the GroupMe API. The zero value is not usable; use New.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	botID      string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a GroupMe client. The token is only needed for group and bot
// management; posting as a bot needs just the bot ID.
func New(token, botID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		botID:      botID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends a message to the group as the bot.
func (c *Client) Post(ctx context.Context, text string) error {
	body := map[string]string{
		"bot_id": c.botID,
		"text":   text,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal bot message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/bots/post", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post bot message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post bot message: unexpected status %d", resp.StatusCode)
	}

	slog.DebugContext(ctx, "Bot message posted", "chars", len(text))
	return nil
}

// Group is a GroupMe group the token can see.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListGroups returns the groups visible to the configured token. Useful when
// setting the bot up in a new apartment.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	q := url.Values{}
	q.Set("token", c.token)
	q.Set("per_page", "499")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/groups?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list groups: unexpected status %d", resp.StatusCode)
	}

	var parsed struct {
		Response []Group `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode groups response: %w", err)
	}
	return parsed.Response, nil
}

// BotConfig describes a bot to register with a group.
type BotConfig struct {
	Name        string `json:"name"`
	GroupID     string `json:"group_id"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// CreateBot registers a new bot and returns the raw API response so the
// operator can copy the new bot ID out of it.
func (c *Client) CreateBot(ctx context.Context, cfg BotConfig) (string, error) {
	payload, err := json.Marshal(map[string]BotConfig{"bot": cfg})
	if err != nil {
		return "", fmt.Errorf("marshal bot config: %w", err)
	}

	q := url.Values{}
	q.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/bots?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create bot: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read create bot response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("create bot: unexpected status %d: %s", resp.StatusCode, raw)
	}
	return string(raw), nil
}
