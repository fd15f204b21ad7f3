// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

// API paths for content managed from the dashboard.
const (
	pathEvents       = "/events"
	pathUploadEvent  = "/upload_events"
	pathDeleteEvent  = "/delete_event/"
	pathUpdates      = "/updates"
	pathUploadUpdate = "/upload_updates"
	pathEditUpdate   = "/edit_update/"
	pathDeleteUpdate = "/delete_update/"
)

// EventInput is the create-event form.
type EventInput struct {
	Title       string
	Description string
	Image       *File
}

// UpdateInput is the create/edit-update form. Attachment is only sent on create.
type UpdateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Attachment  *File  `json:"-"`
}

// Events lists the events visible to the signed-in account.
func (c *Client) Events(ctx context.Context, cookie string) ([]model.Event, error) {
	return list[model.Event](ctx, c, pathEvents, cookie)
}

// CreateEvent uploads a new event as multipart form data.
func (c *Client) CreateEvent(ctx context.Context, cookie string, in EventInput) error {
	rq, err := multipartRequest(http.MethodPost, pathUploadEvent, cookie, []formField{
		{name: "title", value: in.Title},
		{name: "description", value: in.Description},
	}, "imageUrl", in.Image)
	if err != nil {
		return err
	}
	return c.do(ctx, rq, nil)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, cookie, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathDeleteEvent + url.PathEscape(id), cookie: cookie}, nil)
}

// Updates lists the updates visible to the signed-in account.
func (c *Client) Updates(ctx context.Context, cookie string) ([]model.Update, error) {
	return list[model.Update](ctx, c, pathUpdates, cookie)
}

// CreateUpdate uploads a new update, with an optional attachment.
func (c *Client) CreateUpdate(ctx context.Context, cookie string, in UpdateInput) error {
	rq, err := multipartRequest(http.MethodPost, pathUploadUpdate, cookie, []formField{
		{name: "title", value: in.Title},
		{name: "description", value: in.Description},
		{name: "type", value: in.Type},
	}, "fileUrl", in.Attachment)
	if err != nil {
		return err
	}
	return c.do(ctx, rq, nil)
}

// EditUpdate replaces the text fields of an update.
func (c *Client) EditUpdate(ctx context.Context, cookie, id string, in UpdateInput) error {
	rq, err := jsonRequest(http.MethodPut, pathEditUpdate+url.PathEscape(id), cookie, in)
	if err != nil {
		return err
	}
	return c.do(ctx, rq, nil)
}

// DeleteUpdate removes an update.
func (c *Client) DeleteUpdate(ctx context.Context, cookie, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathDeleteUpdate + url.PathEscape(id), cookie: cookie}, nil)
}

func list[T any](ctx context.Context, c *Client, path, cookie string) ([]T, error) {
	_, body, err := c.send(ctx, request{method: http.MethodGet, path: path, cookie: cookie})
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return items, nil
}
