package inmemory

import (
	"sync"
	"time"

	rsvpdomain "wedding-app-go/internal/domain/rsvp"
)

type StatsCache struct {
	mu        sync.RWMutex
	value     rsvpdomain.Stats
	expiresAt time.Time
	now       func() time.Time
}

func NewStatsCache() *StatsCache {
	return &StatsCache{now: time.Now}
}

func (c *StatsCache) Get() (rsvpdomain.Stats, bool) {
	now := c.now()

	c.mu.RLock()
	value, expiresAt := c.value, c.expiresAt
	c.mu.RUnlock()

	if !expiresAt.After(now) {
		return rsvpdomain.Stats{}, false
	}
	return value, true
}

func (c *StatsCache) Set(stats rsvpdomain.Stats, ttl time.Duration) {
	if ttl <= 0 {
		c.Clear()
		return
	}

	c.mu.Lock()
	c.value = stats
	c.expiresAt = c.now().Add(ttl)
	c.mu.Unlock()
}

func (c *StatsCache) Clear() {
	c.mu.Lock()
	c.value = rsvpdomain.Stats{}
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
