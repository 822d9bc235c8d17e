package settings

import (
	"context"
	"sync"

	"warung-menu/internal/domain"
	"warung-menu/internal/repository"

	"go.uber.org/zap"
)

// Subscriber receives the new settings after a successful refresh or an
// explicit write
type Subscriber func(domain.SiteSettings)

// Cache holds the locally served copy of the singleton site settings.
// Readers get the cached value immediately; Refresh refetches in the
// background and fans the result out to every subscriber, so multiple
// consumers (storefront header, admin panel) never query the backend
// independently. There is no TTL: only a successful refetch or an
// explicit Put replaces the value.
type Cache struct {
	repo   repository.SettingsRepository
	logger *zap.Logger

	mu      sync.Mutex
	current domain.SiteSettings
	loaded  bool

	refreshing bool
	waiters    []chan domain.SiteSettings

	nextSubID int
	subs      map[int]Subscriber
}

// NewCache creates a settings cache serving defaults until the first
// successful load
func NewCache(repo repository.SettingsRepository, logger *zap.Logger) *Cache {
	return &Cache{
		repo:    repo,
		logger:  logger,
		current: domain.DefaultSiteSettings(),
		subs:    make(map[int]Subscriber),
	}
}

// Current returns the cached settings without touching the backend
func (c *Cache) Current() domain.SiteSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Loaded reports whether at least one successful fetch or write happened
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Refresh fetches fresh settings and broadcasts them. Concurrent calls
// coalesce into a single repository fetch; every caller receives the
// same result. A failed fetch keeps the previously cached value and is
// reported as an error but never treated as fatal by callers.
func (c *Cache) Refresh(ctx context.Context) (domain.SiteSettings, error) {
	c.mu.Lock()
	if c.refreshing {
		// A fetch is already in flight; wait for its result
		ch := make(chan domain.SiteSettings, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case s := <-ch:
			return s, nil
		case <-ctx.Done():
			return c.Current(), ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	fresh, err := c.repo.Get(ctx)

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil

	if err != nil {
		// Keep serving the prior value
		stale := c.current
		c.mu.Unlock()

		for _, ch := range waiters {
			ch <- stale
		}

		if err == repository.ErrSettingsNotFound {
			// No row yet; defaults stand in for it
			return stale, nil
		}
		c.logger.Warn("Settings refresh failed, keeping cached value", zap.Error(err))
		return stale, err
	}

	c.current = *fresh
	c.loaded = true
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- *fresh
	}
	for _, sub := range subs {
		sub(*fresh)
	}

	return *fresh, nil
}

// Put overwrites the cached value after an admin write and broadcasts it
func (c *Cache) Put(s domain.SiteSettings) {
	c.mu.Lock()
	c.current = s
	c.loaded = true
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	for _, sub := range subs {
		sub(s)
	}
}

// Subscribe registers a subscriber for future updates. The returned
// function cancels the subscription.
func (c *Cache) Subscribe(sub Subscriber) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = sub
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) snapshotSubsLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	return subs
}
