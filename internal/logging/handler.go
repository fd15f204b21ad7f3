// Package logging provides a slog handler that copies WARN and above into
// the activity log so operators can review failures from the admin panel.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/store"
)

// ActivityLogHandler is a slog.Handler that wraps another handler and also
// writes records at or above its level to the activity table.
type ActivityLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
}

// NewActivityLogHandler wraps inner and forwards WARN and above.
func NewActivityLogHandler(inner slog.Handler, db *sql.DB) *ActivityLogHandler {
	return NewActivityLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewActivityLogHandlerWithLevel creates a handler with a custom minimum level.
func NewActivityLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.write(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ActivityLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   merged,
	}
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	return &ActivityLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// write runs on a detached context so a cancelled request still leaves a trace.
func (h *ActivityLogHandler) write(ctx context.Context, r slog.Record) {
	fields := make(map[string]string)
	if path := middleware.GetRequestPath(ctx); path != "" {
		fields["url"] = path
	}
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.String()
		return true
	})

	category := fields["category"]
	delete(fields, "category")
	if category == "" {
		category = inferCategory(r.Message)
	}
	actor := fields["actor"]
	ip := fields["ip"]

	metadata := "{}"
	if len(fields) > 0 {
		if data, err := json.Marshal(fields); err == nil {
			metadata = string(data)
		}
	}

	_, _ = h.queries.CreateActivity(context.WithoutCancel(ctx), store.CreateActivityParams{
		Level:     levelName(r.Level),
		Category:  category,
		Message:   r.Message,
		Actor:     actor,
		IpAddress: ip,
		Metadata:  metadata,
		CreatedAt: r.Time.UTC(),
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

// inferCategory guesses a category from the message when none was attached.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "auth") || strings.Contains(msg, "csrf") || strings.Contains(msg, "access denied"):
		return model.ActivityCategoryAuth
	case strings.Contains(msg, "creator"):
		return model.ActivityCategoryCreator
	case strings.Contains(msg, "update"):
		return model.ActivityCategoryUpdate
	case strings.Contains(msg, "event"):
		return model.ActivityCategoryEvent
	case strings.Contains(msg, "profile"):
		return model.ActivityCategoryProfile
	case strings.Contains(msg, "cache"):
		return model.ActivityCategoryCache
	default:
		return model.ActivityCategorySystem
	}
}
