package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
)

// Client talks to the game server's REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiError is a non-2xx response from the server
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return &apiError{Status: resp.StatusCode, Message: errResp.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.call(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &info, nil
}

func (c *Client) Session(ctx context.Context, id string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.call(ctx, http.MethodGet, sessionPath(id, ""), nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

// Campaign fetches the full campaign, answers included
func (c *Client) Campaign(ctx context.Context, id string) (*engine.Catalog, error) {
	var catalog engine.Catalog
	if err := c.call(ctx, http.MethodGet, "/api/configs/"+url.PathEscape(id), nil, &catalog); err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", id, err)
	}
	return &catalog, nil
}

func (c *Client) State(ctx context.Context, id string) (*engine.StateView, error) {
	var state engine.StateView
	if err := c.call(ctx, http.MethodGet, sessionPath(id, "/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) action(ctx context.Context, id, suffix string, body interface{}) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.call(ctx, http.MethodPost, sessionPath(id, suffix), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Interact(ctx context.Context, id, hotspotID string) (*service.ActionResult, error) {
	return c.action(ctx, id, "/interact", map[string]string{"hotspot_id": hotspotID})
}

func (c *Client) Attempt(ctx context.Context, id, puzzleID string, attempt engine.Attempt) (*service.ActionResult, error) {
	return c.action(ctx, id, "/puzzles/"+url.PathEscape(puzzleID)+"/attempt", attempt)
}

func (c *Client) Combine(ctx context.Context, id, itemA, itemB string) (*service.ActionResult, error) {
	return c.action(ctx, id, "/combine", map[string]string{"item_a": itemA, "item_b": itemB})
}

func (c *Client) Continue(ctx context.Context, id string) (*service.ActionResult, error) {
	return c.action(ctx, id, "/continue", nil)
}

func (c *Client) Reset(ctx context.Context, id string) (*service.ActionResult, error) {
	return c.action(ctx, id, "/reset", service.ResetOptions{})
}
