// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byiringiroaimefils/estg-tss/internal/cache"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/testutil"
)

type fakePublicAPI struct {
	events      []model.Event
	updates     []model.Update
	eventCalls  int
	updateCalls int
	singleCalls int
	err         error
	// onEvents runs inside PublicEvents before it returns.
	onEvents func()
}

func (f *fakePublicAPI) PublicEvents(context.Context) ([]model.Event, error) {
	f.eventCalls++
	events := f.events
	if f.onEvents != nil {
		f.onEvents()
	}
	return events, f.err
}

func (f *fakePublicAPI) PublicEvent(_ context.Context, id string) (model.Event, error) {
	f.singleCalls++
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, errors.New("not found")
}

func (f *fakePublicAPI) PublicUpdates(context.Context) ([]model.Update, error) {
	f.updateCalls++
	return f.updates, f.err
}

func newTestContent(t *testing.T, api PublicAPI) *PublicContent {
	t.Helper()
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mc.Close() })
	return NewPublicContent(api, mc, time.Minute, testutil.DiscardLogger())
}

func TestPublicContent_CachesEvents(t *testing.T) {
	api := &fakePublicAPI{events: []model.Event{{ID: "1", Title: "Fair"}}}
	s := newTestContent(t, api)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		events, err := s.Events(ctx)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	}
	assert.Equal(t, 1, api.eventCalls)
}

func TestPublicContent_InvalidateEvents(t *testing.T) {
	api := &fakePublicAPI{events: []model.Event{{ID: "1", Title: "Fair"}}}
	s := newTestContent(t, api)
	ctx := context.Background()

	_, _ = s.Events(ctx)
	_, _ = s.Event(ctx, "1")
	s.InvalidateEvents(ctx)
	_, _ = s.Events(ctx)
	_, _ = s.Event(ctx, "1")

	assert.Equal(t, 2, api.eventCalls)
	assert.Equal(t, 2, api.singleCalls)
}

func TestPublicContent_InvalidateUpdates(t *testing.T) {
	api := &fakePublicAPI{updates: []model.Update{{ID: "u1"}}}
	s := newTestContent(t, api)
	ctx := context.Background()

	_, _ = s.Updates(ctx)
	s.InvalidateUpdates(ctx)
	_, _ = s.Updates(ctx)
	assert.Equal(t, 2, api.updateCalls)
}

func TestPublicContent_ErrorsAreNotCached(t *testing.T) {
	api := &fakePublicAPI{err: errors.New("down")}
	s := newTestContent(t, api)
	ctx := context.Background()

	_, err := s.Events(ctx)
	require.Error(t, err)

	api.err = nil
	api.events = []model.Event{{ID: "1"}}
	events, err := s.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublicContent_Refresh(t *testing.T) {
	api := &fakePublicAPI{
		events:  []model.Event{{ID: "1"}},
		updates: []model.Update{{ID: "u1"}},
	}
	s := newTestContent(t, api)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	api.events = append(api.events, model.Event{ID: "2"})

	events, err := s.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1, "served from the refreshed cache")
	assert.Equal(t, 1, api.eventCalls)

	stats, ok := s.Stats()
	assert.True(t, ok)
	assert.Equal(t, "memory", stats.Backend)
}

func TestPublicContent_RefreshSkipsListInvalidatedMidFetch(t *testing.T) {
	api := &fakePublicAPI{
		events:  []model.Event{{ID: "1"}, {ID: "2"}},
		updates: []model.Update{{ID: "u1"}},
	}
	s := newTestContent(t, api)
	ctx := context.Background()

	api.onEvents = func() {
		api.events = []model.Event{{ID: "1"}}
		s.InvalidateEvents(ctx)
	}
	require.NoError(t, s.Refresh(ctx))
	api.onEvents = nil

	events, err := s.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Event{{ID: "1"}}, events, "the deleted event is not served")
	assert.Equal(t, 2, api.eventCalls)

	api.updates = append(api.updates, model.Update{ID: "u2"})
	updates, err := s.Updates(ctx)
	require.NoError(t, err)
	assert.Len(t, updates, 1, "updates were not invalidated and stay cached")
}

// blockingPublicAPI holds PublicEvents until release is closed, failing
// early only if its own context ends.
type blockingPublicAPI struct {
	fakePublicAPI
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (b *blockingPublicAPI) PublicEvents(ctx context.Context) ([]model.Event, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	select {
	case <-b.release:
		return []model.Event{{ID: "1", Title: "Science Fair"}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestPublicContent_DisconnectedVisitorDoesNotFailOthers(t *testing.T) {
	api := &blockingPublicAPI{started: make(chan struct{}, 2), release: make(chan struct{})}
	s := newTestContent(t, api)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Events(firstCtx)
		firstErr <- err
	}()
	<-api.started

	type result struct {
		events []model.Event
		err    error
	}
	second := make(chan result, 1)
	go func() {
		events, err := s.Events(context.Background())
		second <- result{events, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(api.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.events, 1)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.calls)
}
