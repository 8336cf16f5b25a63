package file

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_record_cache_hits_total",
		Help: "Total record cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_record_cache_misses_total",
		Help: "Total record cache misses.",
	})
)

// recordCache is an expiring LRU over catalog records, keyed by file id.
// Entries are stored and returned as clones so cached state is never aliased.
type recordCache struct {
	lru *expirable.LRU[string, Record]
}

func newRecordCache(maxEntries int, ttl time.Duration) *recordCache {
	return &recordCache{lru: expirable.NewLRU[string, Record](maxEntries, nil, ttl)}
}

func (c *recordCache) Get(id string) (Record, bool) {
	rec, ok := c.lru.Get(id)
	if !ok {
		cacheMissesTotal.Inc()
		return Record{}, false
	}
	cacheHitsTotal.Inc()
	return rec.Clone(), true
}

func (c *recordCache) Set(rec Record) {
	c.lru.Add(rec.ID.String(), rec.Clone())
}

func (c *recordCache) Invalidate(id string) {
	c.lru.Remove(id)
}
