// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Activity levels
const (
	ActivityLevelInfo    = "info"
	ActivityLevelWarning = "warning"
	ActivityLevelError   = "error"
)

// Activity categories
const (
	ActivityCategoryAuth    = "auth"
	ActivityCategoryEvent   = "event"
	ActivityCategoryUpdate  = "update"
	ActivityCategoryCreator = "creator"
	ActivityCategoryProfile = "profile"
	ActivityCategoryCache   = "cache"
	ActivityCategorySystem  = "system"
)
