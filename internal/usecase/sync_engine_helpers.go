package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

// isCurrent — завершение устаревшей (вытесненной) загрузки игнорируется.
func (s *SyncEngine) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// applyFetched — применить успешный ответ: валидация с отбрасыванием
// некорректных записей, замена коллекции, сквозная запись в кэш и
// детекция новых заказов.
func (s *SyncEngine) applyFetched(ctx context.Context, orders []*domain.Order, force, wasLoaded bool, prevLen int) {
	valid := orders[:0]
	for _, o := range orders {
		if err := s.validator.Validate(ctx, o); err != nil {
			s.log.Warnf(ctx, "dropping invalid order id=%s: %v", o.ID, err)
			continue
		}
		valid = append(valid, o)
	}

	s.store.Replace(valid)
	if err := s.cache.Set(ctx, s.requester.CacheKey(), valid); err != nil {
		s.log.Warnf(ctx, "cache.Set failed: %v", err)
	}

	// Детекция новых заказов по разнице размеров. Эвристика сознательно
	// грубая: одновременное добавление и удаление занижает счёт.
	if wasLoaded && !force && len(valid) > prevLen {
		fresh := len(valid) - prevLen
		s.notifier.Push(ctx, fmt.Sprintf("Поступили новые заказы: %d", fresh), domain.SeveritySuccess)
	}

	s.log.Infof(ctx, "orders synced count=%d", len(valid))
}

// sleepOrDone — ждёт задержку или отмену контекста; false при отмене.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
