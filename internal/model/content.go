// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Author is the embedded author reference on events and updates.
type Author struct {
	Username string `json:"username"`
}

// Event is a school event.
type Event struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Author      Author    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Update is an announcement. Type is a free-form tag such as "exam" or "notice".
type Update struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	FileURL     string    `json:"fileUrl,omitempty"`
	Author      Author    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasAttachment reports whether the update links a downloadable file.
func (u Update) HasAttachment() bool {
	return u.FileURL != ""
}

// Creator is a content creator account.
type Creator struct {
	ID         string     `json:"_id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Phone      FlexString `json:"phone"`
	BackupCode FlexString `json:"backupCodeDecimal"`
}

// BackupCodeOrNA returns the backup code, or "N/A" when the account has none.
func (c Creator) BackupCodeOrNA() string {
	if c.BackupCode == "" {
		return "N/A"
	}
	return c.BackupCode.String()
}
