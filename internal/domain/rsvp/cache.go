package rsvp

import "time"

// StatsCache holds the last computed Stats. Writes clear it.
type StatsCache interface {
	Get() (Stats, bool)
	Set(stats Stats, ttl time.Duration)
	Clear()
}

type noopStatsCache struct{}

func (noopStatsCache) Get() (Stats, bool) {
	return Stats{}, false
}

func (noopStatsCache) Set(Stats, time.Duration) {}

func (noopStatsCache) Clear() {}
