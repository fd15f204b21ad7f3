// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the typed client for the school REST API.
//
// The API authenticates with a session cookie. Login methods return the
// Cookie header value the API set; callers keep it in the browser session
// and pass it back on every authenticated call.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Client configuration constants
const (
	DefaultTimeout  = 15 * time.Second
	MaxResponseLen  = 4 << 20
	UserAgent       = "estg-tss-web/1.0"
	RequestIDHeader = "X-Request-ID"
)

var (
	// ErrUnauthorized is returned (via *Error) when the API answers 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned (via *Error) when the API answers 404.
	ErrNotFound = errors.New("not found")
	// ErrUnreachable wraps transport failures where no response arrived.
	ErrUnreachable = errors.New("no response from server")
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match the sentinel for the status code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message returns the API-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client talks to the school API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for baseURL with its own pooled transport.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}, logger)
}

// NewWithHTTPClient creates a Client using hc.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger,
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes a single API call.
type request struct {
	method      string
	path        string
	cookie      string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, cookie string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("encoding %s body: %w", path, err)
	}
	return request{
		method:      method,
		path:        path,
		cookie:      cookie,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

// send performs the call and returns the response with its body already read.
// Non-2xx answers come back as *Error.
func (c *Client) send(ctx context.Context, rq request) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, rq.method, c.baseURL+rq.path, rq.body)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s %s: %w", rq.method, rq.path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if rq.contentType != "" {
		req.Header.Set("Content-Type", rq.contentType)
	}
	if rq.cookie != "" {
		req.Header.Set("Cookie", rq.cookie)
	}
	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, fmt.Errorf("%s %s: %w", rq.method, rq.path, ctxErr)
		}
		return nil, nil, fmt.Errorf("%s %s: %w: %w", rq.method, rq.path, ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s %s: %w", rq.method, rq.path, err)
	}

	c.logger.Debug("api call",
		"method", rq.method,
		"path", rq.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, body, &Error{Status: resp.StatusCode, Message: extractMessage(body)}
	}
	return resp, body, nil
}

// do performs the call and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, rq request, out any) error {
	_, body, err := c.send(ctx, rq)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", rq.method, rq.path, err)
	}
	return nil
}

// extractMessage pulls "message" (or "error") out of an error body.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// decodeList accepts either a bare JSON array or the {"data": [...]} envelope.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
	} else {
		var envelope struct {
			Data []T `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		items = envelope.Data
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// sessionCookie joins the cookies an API response set into a Cookie header value.
func sessionCookie(resp *http.Response) string {
	cookies := resp.Cookies()
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Value == "" || ck.MaxAge < 0 {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}
