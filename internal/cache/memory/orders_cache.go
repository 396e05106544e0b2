package memory

import (
	"context"
	"sync"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/pkg/metrics"
)

type entry struct {
	orders    []*domain.Order
	writtenAt time.Time
}

// CollectionCache — кэш коллекций заказов с TTL, ключ — идентичность
// запрашивающего. Фоновых таймеров нет: истекшие записи подчищаются
// попутно при каждой записи (best-effort, не жёсткий дедлайн).
type CollectionCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

func NewCollectionCache(ttl time.Duration) *CollectionCache {
	return &CollectionCache{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Get — вернуть коллекцию по ключу. Запись с истекшим TTL ведёт себя как
// отсутствующая, но не удаляется: её перезапишет следующий Set.
func (c *CollectionCache) Get(_ context.Context, key string) ([]*domain.Order, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		return nil, false
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return domain.CloneOrders(ent.orders), true
}

// Set — сохранить коллекцию и попутно удалить все истекшие записи,
// чтобы ограничить рост при множестве разных ключей.
func (c *CollectionCache) Set(_ context.Context, key string, orders []*domain.Order) error {
	if key == "" {
		return nil
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpired(now)

	c.entries[key] = &entry{
		orders:    domain.CloneOrders(orders),
		writtenAt: now,
	}
	metrics.CacheSize.Set(float64(len(c.entries)))
	return nil
}

// InvalidateAll — безусловно опустошает кэш; вызывается после любой мутации
// и перед принудительным обновлением.
func (c *CollectionCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	metrics.CacheOps.WithLabelValues("invalidated").Inc()
	metrics.CacheSize.Set(0)
}

// Len — текущее число записей (включая истекшие, ещё не подчищенные).
func (c *CollectionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
