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

	"taskgrid.org/internal/audit"
	"taskgrid.org/internal/auth"
	"taskgrid.org/internal/task"
)

// Client is a typed HTTP client for the TaskGrid API, for smoke tooling and
// service-to-service callers.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken preloads a bearer token (skips Login).
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client with sensible defaults.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api error %d: %s (request_id=%s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Register signs up a new account and keeps the issued token for later calls.
func (c *Client) Register(ctx context.Context, email, password, organization string) (auth.Session, error) {
	var session auth.Session
	err := c.do(ctx, http.MethodPost, "/v1/auth/register", map[string]any{
		"email":        email,
		"password":     password,
		"organization": organization,
	}, &session)
	if err != nil {
		return auth.Session{}, err
	}
	c.token = session.Token
	return session, nil
}

// Login authenticates and keeps the issued token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (auth.Session, error) {
	var session auth.Session
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return auth.Session{}, err
	}
	c.token = session.Token
	return session, nil
}

// TaskInput is the payload for CreateTask.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Status      string `json:"status,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
	OwnerID     *string `json:"owner_id,omitempty"`
}

type listTasksPayload struct {
	Items []task.Task `json:"items"`
}

type listAuditPayload struct {
	Items []audit.Entry `json:"items"`
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/v1/tasks", in, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var payload listTasksPayload
	if err := c.do(ctx, http.MethodGet, "/v1/tasks", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPut, "/v1/tasks/"+url.PathEscape(id), patch, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/tasks/"+url.PathEscape(id), nil, nil)
}

// AuditLog fetches audit entries, optionally filtered by actor or resource.
func (c *Client) AuditLog(ctx context.Context, actorID, resourceID string) ([]audit.Entry, error) {
	path := "/v1/audit-log"
	params := url.Values{}
	if actorID != "" {
		params.Set("actor_id", actorID)
	}
	if resourceID != "" {
		params.Set("resource_id", resourceID)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var payload listAuditPayload
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error     string `json:"error"`
			RequestID string `json:"request_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
			apiErr.RequestID = envelope.RequestID
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
