package memory

import (
	"context"
	"testing"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

func sampleOrders(ids ...string) []*domain.Order {
	orders := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, &domain.Order{ID: id, Status: domain.StatusPending})
	}
	return orders
}

func TestCollectionCache_HitAndMiss(t *testing.T) {
	ctx := context.Background()
	c := NewCollectionCache(time.Minute)

	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("Get on empty cache: ok = true")
	}

	if err := c.Set(ctx, "key", sampleOrders("o1", "o2")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "key")
	if !ok || len(got) != 2 {
		t.Fatalf("Get = (%d, %v), want (2, true)", len(got), ok)
	}
}

// TestCollectionCache_ExpiredBehavesAbsent — истекшая запись ведёт себя как
// отсутствующая, но остаётся в карте до ближайшего Set.
func TestCollectionCache_ExpiredBehavesAbsent(t *testing.T) {
	ctx := context.Background()
	c := NewCollectionCache(30 * time.Millisecond)

	if err := c.Set(ctx, "key", sampleOrders("o1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("Get after TTL: ok = true")
	}
	if c.Len() != 1 {
		t.Fatalf("Len after expired Get = %d, want 1 (not deleted)", c.Len())
	}
}

// TestCollectionCache_SetSweepsExpired — запись подчищает все истекшие
// записи, включая чужие ключи.
func TestCollectionCache_SetSweepsExpired(t *testing.T) {
	ctx := context.Background()
	c := NewCollectionCache(30 * time.Millisecond)

	if err := c.Set(ctx, "stale", sampleOrders("o1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := c.Set(ctx, "fresh", sampleOrders("o2")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len after sweep = %d, want 1", c.Len())
	}
	if _, ok := c.Get(ctx, "fresh"); !ok {
		t.Fatalf("fresh key must survive the sweep")
	}
}

func TestCollectionCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := NewCollectionCache(time.Minute)

	_ = c.Set(ctx, "a", sampleOrders("o1"))
	_ = c.Set(ctx, "b", sampleOrders("o2"))

	c.InvalidateAll(ctx)
	if c.Len() != 0 {
		t.Fatalf("Len after InvalidateAll = %d, want 0", c.Len())
	}
}

// TestCollectionCache_ReturnsCopies — мутация возвращённого среза не
// просачивается в кэш.
func TestCollectionCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewCollectionCache(time.Minute)

	orders := sampleOrders("o1")
	_ = c.Set(ctx, "key", orders)

	// Мутация исходника после записи.
	orders[0].Status = domain.StatusCancelled

	got, ok := c.Get(ctx, "key")
	if !ok {
		t.Fatalf("Get: ok = false")
	}
	if got[0].Status != domain.StatusPending {
		t.Fatalf("cache shares memory with caller: status = %q", got[0].Status)
	}

	// Мутация результата чтения.
	got[0].Status = domain.StatusShipped
	again, _ := c.Get(ctx, "key")
	if again[0].Status != domain.StatusPending {
		t.Fatalf("cache shares memory with reader: status = %q", again[0].Status)
	}
}

func TestCollectionCache_DistinctKeys(t *testing.T) {
	ctx := context.Background()
	c := NewCollectionCache(time.Minute)

	_ = c.Set(ctx, "id:f1", sampleOrders("o1"))
	_ = c.Set(ctx, "id:f2", sampleOrders("o2", "o3"))

	first, _ := c.Get(ctx, "id:f1")
	second, _ := c.Get(ctx, "id:f2")
	if len(first) != 1 || len(second) != 2 {
		t.Fatalf("keys are not independent: %d, %d", len(first), len(second))
	}
}
