// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/byiringiroaimefils/estg-tss/internal/cache"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

// Cache keys for public content. Every key shares keyPrefix so a single
// DeleteByPrefix clears a resource.
const (
	keyPrefix      = "public:"
	keyEvents      = keyPrefix + "events"
	keyEventPrefix = keyPrefix + "event:"
	keyUpdates     = keyPrefix + "updates"
	keyEventsAll   = keyPrefix + "event"
)

// PublicAPI is the part of the API client the public pages need.
type PublicAPI interface {
	PublicEvents(ctx context.Context) ([]model.Event, error)
	PublicEvent(ctx context.Context, id string) (model.Event, error)
	PublicUpdates(ctx context.Context) ([]model.Update, error)
}

// PublicContent serves the unauthenticated event and update lists through a
// short-lived cache. Admin mutations call the Invalidate methods.
type PublicContent struct {
	api     PublicAPI
	cache   cache.Cache
	events  *cache.TypedCache[[]model.Event]
	event   *cache.TypedCache[model.Event]
	updates *cache.TypedCache[[]model.Update]
	logger  *slog.Logger

	// mu guards the generations. Each Invalidate bumps one so Refresh can
	// tell that its fetched lists went stale before it stored them.
	mu         sync.Mutex
	eventsGen  uint64
	updatesGen uint64
}

// NewPublicContent creates a PublicContent. A zero ttl uses the cache default.
func NewPublicContent(api PublicAPI, c cache.Cache, ttl time.Duration, logger *slog.Logger) *PublicContent {
	return &PublicContent{
		api:     api,
		cache:   c,
		events:  cache.NewTypedCache[[]model.Event](c, ttl),
		event:   cache.NewTypedCache[model.Event](c, ttl),
		updates: cache.NewTypedCache[[]model.Update](c, ttl),
		logger:  logger,
	}
}

// Events returns all published events.
func (s *PublicContent) Events(ctx context.Context) ([]model.Event, error) {
	return s.events.GetOrSet(ctx, keyEvents, func(ctx context.Context) ([]model.Event, error) {
		return s.api.PublicEvents(ctx)
	})
}

// Event returns one published event.
func (s *PublicContent) Event(ctx context.Context, id string) (model.Event, error) {
	return s.event.GetOrSet(ctx, keyEventPrefix+id, func(ctx context.Context) (model.Event, error) {
		return s.api.PublicEvent(ctx, id)
	})
}

// Updates returns all published updates.
func (s *PublicContent) Updates(ctx context.Context) ([]model.Update, error) {
	return s.updates.GetOrSet(ctx, keyUpdates, func(ctx context.Context) ([]model.Update, error) {
		return s.api.PublicUpdates(ctx)
	})
}

// InvalidateEvents drops the cached event list and every cached event.
func (s *PublicContent) InvalidateEvents(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventsGen++
	s.dropEvents(ctx)
}

func (s *PublicContent) dropEvents(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(context.WithoutCancel(ctx), keyEventsAll); err != nil {
		s.logger.Warn("failed to invalidate event cache", "error", err, "category", model.ActivityCategoryCache)
	}
}

// InvalidateUpdates drops the cached update list.
func (s *PublicContent) InvalidateUpdates(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatesGen++
	if err := s.cache.Delete(context.WithoutCancel(ctx), keyUpdates); err != nil {
		s.logger.Warn("failed to invalidate update cache", "error", err, "category", model.ActivityCategoryCache)
	}
}

// Refresh reloads both lists from the API. Used by the scheduler so page
// views rarely pay for a cold cache. A list invalidated while it was being
// fetched is not stored.
func (s *PublicContent) Refresh(ctx context.Context) error {
	s.mu.Lock()
	eventsGen, updatesGen := s.eventsGen, s.updatesGen
	s.mu.Unlock()

	events, err := s.api.PublicEvents(ctx)
	if err != nil {
		return err
	}
	updates, err := s.api.PublicUpdates(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventsGen == eventsGen {
		s.dropEvents(ctx)
		_ = s.events.Set(ctx, keyEvents, events)
	}
	if s.updatesGen == updatesGen {
		_ = s.updates.Set(ctx, keyUpdates, updates)
	}
	s.logger.Debug("public content refreshed",
		"events", len(events),
		"updates", len(updates),
		"stale_events", s.eventsGen != eventsGen,
		"stale_updates", s.updatesGen != updatesGen,
	)
	return nil
}

// Stats exposes cache counters when the backend keeps them.
func (s *PublicContent) Stats() (cache.Stats, bool) {
	sp, ok := s.cache.(cache.StatsProvider)
	if !ok {
		return cache.Stats{}, false
	}
	return sp.Stats(), true
}
