package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/ports"
	"github.com/greenbasket/farmdash/pkg/metrics"
)

// RetryPolicy — явная политика повторов вместо неявной рекурсии по таймеру.
type RetryPolicy struct {
	MaxRetries int           // дополнительных попыток после первой
	Base       time.Duration // задержка = Base * 2^attempt
}

// DefaultRetryPolicy — до трёх повторов, экспонента от секунды.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Base: time.Second}
}

// Delay — задержка перед повтором номер attempt (с нуля).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.Base * (1 << attempt)
}

// SyncEngine — оркестратор загрузки заказов: кэш, ретраи с backoff,
// отмена устаревших запросов, детекция новых заказов.
type SyncEngine struct {
	gateway   ports.OrderGateway
	cache     ports.OrderCache
	store     *OrderStore
	notifier  ports.Notifier
	validator ports.OrderValidator
	log       ports.Logger
	requester domain.Requester
	retry     RetryPolicy

	mu         sync.Mutex
	inFlight   bool
	cancel     context.CancelFunc
	generation uint64
}

// NewSyncEngine — DI-конструктор.
func NewSyncEngine(
	gateway ports.OrderGateway,
	cache ports.OrderCache,
	store *OrderStore,
	notifier ports.Notifier,
	validator ports.OrderValidator,
	log ports.Logger,
	requester domain.Requester,
	retry RetryPolicy,
) *SyncEngine {
	if retry.MaxRetries <= 0 {
		retry = DefaultRetryPolicy()
	}
	return &SyncEngine{
		gateway:   gateway,
		cache:     cache,
		store:     store,
		notifier:  notifier,
		validator: validator,
		log:       log,
		requester: requester,
		retry:     retry,
	}
}

// FetchOrders — загрузить коллекцию заказов фермера.
//
// Одновременно логически активна максимум одна загрузка: повторный фоновый
// вызов при активной — no-op; принудительный (force) вызов вытесняет
// активную, отменяя её. Завершение вытесненной загрузки игнорируется по
// номеру поколения. Отмена — не ошибка: ни состояние, ни уведомления не
// меняются.
//
// При force=false первая попытка сначала смотрит в кэш; попадание полностью
// избавляет от сетевого вызова. Ошибки сети ретраятся по политике; после
// исчерпания коллекция очищается и публикуется ошибка.
func (s *SyncEngine) FetchOrders(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.inFlight {
		if !force {
			s.mu.Unlock()
			s.log.Infof(ctx, "fetch already in flight, skipping background refresh")
			return nil
		}
		// Принудительное обновление вытесняет текущую загрузку.
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.generation++
	gen := s.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	s.inFlight = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.generation == gen {
			s.inFlight = false
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	if force {
		s.cache.InvalidateAll(ctx)
	}

	wasLoaded := s.store.Loaded()
	prevLen := s.store.Len()

	for attempt := 0; ; attempt++ {
		// Кэш опрашивается только на первой попытке фонового обновления.
		if attempt == 0 && !force {
			if cached, ok := s.cache.Get(fetchCtx, s.requester.CacheKey()); ok {
				if !s.isCurrent(gen) {
					return nil
				}
				s.store.Replace(cached)
				metrics.FetchAttempts.WithLabelValues("cache_hit").Inc()
				s.log.Infof(ctx, "orders served from cache count=%d", len(cached))
				return nil
			}
		}

		orders, err := s.gateway.FetchOrders(fetchCtx, s.requester)
		if err == nil {
			if !s.isCurrent(gen) {
				return nil
			}
			s.applyFetched(ctx, orders, force, wasLoaded, prevLen)
			metrics.FetchAttempts.WithLabelValues("ok").Inc()
			return nil
		}

		// Отмена — не событие: состояние не трогаем, не уведомляем.
		if errors.Is(err, context.Canceled) {
			metrics.FetchAttempts.WithLabelValues("cancelled").Inc()
			s.log.Infof(ctx, "fetch cancelled (superseded)")
			return nil
		}

		metrics.FetchAttempts.WithLabelValues("error").Inc()
		if attempt >= s.retry.MaxRetries {
			if s.isCurrent(gen) {
				s.store.Clear()
				s.notifier.Push(ctx, "Не удалось загрузить заказы. Попробуйте обновить страницу.", domain.SeverityError)
			}
			s.log.Errorf(ctx, "fetch failed after %d attempts: %v", attempt+1, err)
			return fmt.Errorf("fetch orders: %w", err)
		}

		delay := s.retry.Delay(attempt)
		s.notifier.Push(ctx,
			fmt.Sprintf("Проблема с загрузкой заказов, повтор %d/%d...", attempt+1, s.retry.MaxRetries),
			domain.SeverityWarning)
		metrics.FetchRetries.Inc()
		s.log.Warnf(ctx, "fetch failed: %v (retry %d/%d in %s)", err, attempt+1, s.retry.MaxRetries, delay)

		if !sleepOrDone(fetchCtx, delay) {
			s.log.Infof(ctx, "fetch cancelled during backoff")
			return nil
		}
	}
}

// Invalidate — сброс кэша снаружи (используется координатором мутаций
// через общий порт; здесь — для принудительных обновлений по расписанию).
func (s *SyncEngine) Invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}
