// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content types exchanged with the school API
// and the local activity log levels and categories.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// Roles returned by the API.
const (
	RoleAdmin          = "Admin"
	RoleContentCreator = "ContentCreator"
)

// Profile is the current session as reported by the dashboard endpoint.
type Profile struct {
	Username   string     `json:"user"`
	Email      string     `json:"email"`
	Avatar     string     `json:"avatar,omitempty"`
	Role       string     `json:"role"`
	BackupCode FlexString `json:"backupCode,omitempty"`
}

// IsAdmin returns true if the profile has the Admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage reports whether the role may use the admin panel at all.
func (p Profile) CanManage() bool {
	return p.Role == RoleAdmin || p.Role == RoleContentCreator
}

// Initial returns the upper-cased first letter of the username for the avatar badge.
func (p Profile) Initial() string {
	name := strings.TrimSpace(p.Username)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// FlexString accepts a JSON string or number. The API is not consistent
// about how it encodes backup codes and phone numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler. Objects and arrays are rejected.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("flex string: empty value")
	}

	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return fmt.Errorf("flex string: invalid value %q", data)
		}
		*f = ""
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*f = FlexString(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*f = FlexString(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("flex string: expected a string or number, got %c", data[0])
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// String returns the value as a plain string.
func (f FlexString) String() string {
	return string(f)
}
