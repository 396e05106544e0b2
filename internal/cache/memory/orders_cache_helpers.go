package memory

import (
	"time"

	"github.com/greenbasket/farmdash/pkg/metrics"
)

// isExpired — проверяет истечение TTL.
func (c *CollectionCache) isExpired(ent *entry, now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return !now.Before(ent.writtenAt.Add(c.ttl))
}

// sweepExpired — удаляет записи с истекшим TTL. Вызывается под мьютексом.
func (c *CollectionCache) sweepExpired(now time.Time) {
	for key, ent := range c.entries {
		if c.isExpired(ent, now) {
			delete(c.entries, key)
			metrics.CacheOps.WithLabelValues("swept").Inc()
		}
	}
}
