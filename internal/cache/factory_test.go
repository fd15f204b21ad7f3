package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_SelectsBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"memory by default", "", "memory"},
		{"redis when reachable", "redis://" + mr.Addr() + "/0", "redis"},
		{"memory when redis is down", "redis://127.0.0.1:1/0", "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Config{RedisURL: tt.url, DefaultTTL: time.Minute}, discardLogger())
			defer func() { _ = c.Close() }()

			sp, ok := c.(StatsProvider)
			if assert.True(t, ok) {
				assert.Equal(t, tt.want, sp.Stats().Backend)
			}
		})
	}
}
