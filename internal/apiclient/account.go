// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

// API paths for account operations.
const (
	pathDashboard     = "/account/dashboard"
	pathAdminLogin    = "/account/admin/login"
	pathCreatorLogin  = "/account/creator/login"
	pathLogout        = "/account/logout"
	pathUpdateProfile = "/account/updateprofile"
)

// Credentials is the login form body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileChange updates exactly one profile field. Empty fields are omitted.
type ProfileChange struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Dashboard returns the profile for the session identified by cookie.
func (c *Client) Dashboard(ctx context.Context, cookie string) (model.Profile, error) {
	var p model.Profile
	err := c.do(ctx, request{method: http.MethodGet, path: pathDashboard, cookie: cookie}, &p)
	return p, err
}

// AdminLogin signs in through the admin endpoint and returns the API session cookie.
func (c *Client) AdminLogin(ctx context.Context, creds Credentials) (string, error) {
	return c.login(ctx, pathAdminLogin, creds)
}

// CreatorLogin signs in through the content creator endpoint.
func (c *Client) CreatorLogin(ctx context.Context, creds Credentials) (string, error) {
	return c.login(ctx, pathCreatorLogin, creds)
}

func (c *Client) login(ctx context.Context, path string, creds Credentials) (string, error) {
	rq, err := jsonRequest(http.MethodPost, path, "", creds)
	if err != nil {
		return "", err
	}
	resp, _, err := c.send(ctx, rq)
	if err != nil {
		return "", err
	}
	return sessionCookie(resp), nil
}

// Logout ends the API session.
func (c *Client) Logout(ctx context.Context, cookie string) error {
	return c.do(ctx, request{method: http.MethodGet, path: pathLogout, cookie: cookie}, nil)
}

// UpdateProfile applies change to the signed-in account.
func (c *Client) UpdateProfile(ctx context.Context, cookie string, change ProfileChange) error {
	rq, err := jsonRequest(http.MethodPut, pathUpdateProfile, cookie, change)
	if err != nil {
		return err
	}
	return c.do(ctx, rq, nil)
}
