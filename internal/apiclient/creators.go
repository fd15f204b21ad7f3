// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

const pathCreators = "/account/creators"

// CreatorInput registers a new content creator account.
type CreatorInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Creators lists content creator accounts. Admin only.
func (c *Client) Creators(ctx context.Context, cookie string) ([]model.Creator, error) {
	return list[model.Creator](ctx, c, pathCreators, cookie)
}

// CreateCreator registers a content creator account.
func (c *Client) CreateCreator(ctx context.Context, cookie string, in CreatorInput) error {
	rq, err := jsonRequest(http.MethodPost, pathCreators, cookie, in)
	if err != nil {
		return err
	}
	return c.do(ctx, rq, nil)
}

// DeleteCreator removes a content creator and returns the API's confirmation message.
func (c *Client) DeleteCreator(ctx context.Context, cookie, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, request{method: http.MethodDelete, path: pathCreators + "/" + url.PathEscape(id), cookie: cookie}, &out)
	return out.Message, err
}
