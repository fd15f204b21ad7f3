// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

// Public API paths. No session cookie is sent.
const (
	pathAllEvents   = "/all_events"
	pathSingleEvent = "/single_event/"
	pathAllUpdates  = "/all_updates"
)

// PublicEvents lists every published event.
func (c *Client) PublicEvents(ctx context.Context) ([]model.Event, error) {
	return list[model.Event](ctx, c, pathAllEvents, "")
}

// PublicEvent returns one event. A missing event yields an error matching ErrNotFound.
func (c *Client) PublicEvent(ctx context.Context, id string) (model.Event, error) {
	var e model.Event
	if err := c.do(ctx, request{method: http.MethodGet, path: pathSingleEvent + url.PathEscape(id)}, &e); err != nil {
		return model.Event{}, err
	}
	if e.ID == "" {
		return model.Event{}, &Error{Status: http.StatusNotFound}
	}
	return e, nil
}

// PublicUpdates lists every published update.
func (c *Client) PublicUpdates(ctx context.Context) ([]model.Update, error) {
	return list[model.Update](ctx, c, pathAllUpdates, "")
}

// Ping checks that the API answers at all. Any status below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.send(ctx, request{method: http.MethodGet, path: pathAllUpdates})
	var apiErr *Error
	if err != nil && errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return nil
	}
	return err
}
