// Package api wraps the board service's REST surface: the commands the
// optimistic coordinator fires, plain create/delete commands, and the bulk
// fetch that seeds the client store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FordLabs/retroquest-sub000/board"
)

// StatusError is a non-2xx response from the board service.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Client talks to one board service. It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, e.g. for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: e.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// FetchBoard returns the full current board for a team. It must complete
// before any derived view is treated as authoritative for first paint.
func (c *Client) FetchBoard(ctx context.Context, teamID int64) (board.Snapshot, error) {
	var snap board.Snapshot
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/team/%d/board", teamID), nil, &snap)
	return snap, err
}

func (c *Client) CreateThought(ctx context.Context, teamID int64, topic board.Topic, message string) error {
	body := map[string]any{"topic": topic, "message": message}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/team/%d/thought", teamID), body, nil)
}

func (c *Client) EditThoughtMessage(ctx context.Context, teamID, thoughtID int64, message string) error {
	body := map[string]any{"message": message}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/team/%d/thought/%d/message", teamID, thoughtID), body, nil)
}

func (c *Client) HeartThought(ctx context.Context, teamID, thoughtID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/team/%d/thought/%d/heart", teamID, thoughtID), nil, nil)
}

func (c *Client) SetThoughtDiscussed(ctx context.Context, teamID, thoughtID int64, discussed bool) error {
	body := map[string]any{"discussed": discussed}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/team/%d/thought/%d/discussed", teamID, thoughtID), body, nil)
}

func (c *Client) MoveThought(ctx context.Context, teamID, thoughtID int64, topic board.Topic) error {
	body := map[string]any{"topic": topic}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/team/%d/thought/%d/topic", teamID, thoughtID), body, nil)
}

func (c *Client) DeleteThought(ctx context.Context, teamID, thoughtID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/team/%d/thought/%d", teamID, thoughtID), nil, nil)
}

func (c *Client) CreateActionItem(ctx context.Context, teamID int64, task, assignee string) error {
	body := map[string]any{"task": task, "assignee": assignee}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/team/%d/action-item", teamID), body, nil)
}

func (c *Client) UpdateActionItem(ctx context.Context, teamID int64, item board.ActionItem) error {
	body := map[string]any{"task": item.Task, "assignee": item.Assignee, "completed": item.Completed}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/team/%d/action-item/%d", teamID, item.ID), body, nil)
}

func (c *Client) DeleteActionItem(ctx context.Context, teamID, itemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/team/%d/action-item/%d", teamID, itemID), nil, nil)
}

func (c *Client) RenameColumn(ctx context.Context, teamID, columnID int64, title string) error {
	body := map[string]any{"title": title}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/team/%d/column/%d/title", teamID, columnID), body, nil)
}

// EndRetro asks the service to wipe the board. The matching broadcast event
// performs the local clear on every client, including this one.
func (c *Client) EndRetro(ctx context.Context, teamID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/team/%d/retro", teamID), nil, nil)
}
