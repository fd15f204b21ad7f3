package logging

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/store"
	"github.com/byiringiroaimefils/estg-tss/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listActivity(t *testing.T, q *store.Queries) []store.Activity {
	t.Helper()
	items, err := q.ListActivity(context.Background(), store.ListActivityParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	return items
}

func TestActivityLogHandler_ErrorLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))

	logger.Error("api unreachable", "path", "/events", "status", 502)

	items := listActivity(t, store.New(db))
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	if items[0].Level != model.ActivityLevelError {
		t.Errorf("Level = %q, want %q", items[0].Level, model.ActivityLevelError)
	}
	if items[0].Message != "api unreachable" {
		t.Errorf("Message = %q", items[0].Message)
	}
	if items[0].Metadata != `{"path":"/events","status":"502"}` {
		t.Errorf("Metadata = %q", items[0].Metadata)
	}
}

func TestActivityLogHandler_InfoNotCaptured(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))

	logger.Info("server started", "port", 8080)
	logger.Debug("processing request")

	if items := listActivity(t, store.New(db)); len(items) != 0 {
		t.Errorf("expected 0 entries, got %d", len(items))
	}
}

func TestActivityLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewActivityLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("server started")

	if items := listActivity(t, store.New(db)); len(items) != 1 {
		t.Errorf("expected 1 entry, got %d", len(items))
	}
}

func TestActivityLogHandler_CategoryAndActor(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewActivityLogHandler(discardHandler{}, db)).With("actor", "admin@estg.rw")

	logger.Warn("something odd", "category", model.ActivityCategoryCache, "ip", "10.0.0.1")

	items := listActivity(t, store.New(db))
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	if items[0].Category != model.ActivityCategoryCache {
		t.Errorf("Category = %q", items[0].Category)
	}
	if items[0].Actor != "admin@estg.rw" {
		t.Errorf("Actor = %q", items[0].Actor)
	}
	if items[0].IpAddress != "10.0.0.1" {
		t.Errorf("IpAddress = %q", items[0].IpAddress)
	}
}

func TestActivityLogHandler_RequestPathFromContext(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))

	var ctx context.Context
	handler := middleware.RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/events", nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	logger.ErrorContext(cancelled, "failed to delete event")

	items := listActivity(t, store.New(db))
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	if items[0].Metadata != `{"url":"/admin/events"}` {
		t.Errorf("Metadata = %q", items[0].Metadata)
	}
	if items[0].Category != model.ActivityCategoryEvent {
		t.Errorf("Category = %q", items[0].Category)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"login attempt blocked", model.ActivityCategoryAuth},
		{"CSRF validation failed", model.ActivityCategoryAuth},
		{"failed to delete creator", model.ActivityCategoryCreator},
		{"failed to fetch updates", model.ActivityCategoryUpdate},
		{"failed to delete event", model.ActivityCategoryEvent},
		{"profile change rejected", model.ActivityCategoryProfile},
		{"redis cache unavailable", model.ActivityCategoryCache},
		{"disk almost full", model.ActivityCategorySystem},
	}

	for _, tt := range tests {
		if got := inferCategory(tt.message); got != tt.want {
			t.Errorf("inferCategory(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}
