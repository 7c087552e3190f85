// Package client talks to a running msgscheduler server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crystaldolphin/msgscheduler/internal/api"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("server returned %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client is a thin wrapper over the server's JSON endpoints.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for baseURL (e.g. "http://localhost:3000").
func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Send delivers text to chatID immediately.
func (c *Client) Send(ctx context.Context, chatID, text string) error {
	body := map[string]string{"chatId": chatID, "message": text}
	return c.do(ctx, http.MethodPost, "/send-message", body, nil)
}

// Schedule registers text for delivery at dateTime and returns the job id.
func (c *Client) Schedule(ctx context.Context, chatID, text, dateTime string) (string, error) {
	body := map[string]string{"chatId": chatID, "message": text, "dateTime": dateTime}
	var out result
	if err := c.do(ctx, http.MethodPost, "/schedule-message", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// List returns every pending scheduled message.
func (c *Client) List(ctx context.Context) ([]api.ScheduledMessage, error) {
	var out []api.ScheduledMessage
	if err := c.do(ctx, http.MethodGet, "/scheduled-messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel removes a pending scheduled message.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/scheduled-messages/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
