// Package client calls the chat server's JSON API on behalf of a signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gunjanghate/chat-bot-task/models"
)

// Client implements session.Backend over HTTP.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// New creates a client for the server at baseURL authenticating with the
// session token a browser sign-in issued.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{},
	}
}

func (c *Client) History(ctx context.Context) ([]models.Message, error) {
	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, "/history", nil, &messages); err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	var resp models.CompletionResponse
	if err := c.do(ctx, http.MethodPost, "/completion", models.CompletionRequest{Message: message}, &resp); err != nil {
		return "", fmt.Errorf("requesting completion: %w", err)
	}
	return resp.Reply, nil
}

func (c *Client) Save(ctx context.Context, messages []models.Message) error {
	var resp models.SaveHistoryResponse
	if err := c.do(ctx, http.MethodPost, "/chat/save", models.SaveHistoryRequest{Messages: messages}, &resp); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("saving history: %w: server did not confirm", models.ErrInternal)
	}
	return nil
}

// Session returns the email the token belongs to.
func (c *Client) Session(ctx context.Context) (string, error) {
	var resp models.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &resp); err != nil {
		return "", fmt.Errorf("fetching session: %w", err)
	}
	return resp.Email, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrInternal, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// statusError maps a failed response onto the server's error kinds.
func statusError(status int, body []byte) error {
	var errResp models.ErrorResponse
	_ = json.Unmarshal(body, &errResp)
	msg := errResp.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", models.ErrUnauthorized, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", models.ErrBadRequest, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", models.ErrInternal, status, msg)
	}
}
