package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/orderapi"
	"github.com/greenbasket/farmdash/internal/ports"
	"github.com/greenbasket/farmdash/pkg/metrics"
)

var (
	// ErrOrderNotFound — заказ отсутствует в видимой коллекции.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition — недопустимый переход статуса.
	ErrInvalidTransition = errors.New("invalid status transition")
)

const (
	// bulkBatchSize — размер пачки массового обновления: пачки идут
	// последовательно, запросы внутри пачки — конкурентно.
	bulkBatchSize = 5

	// shippedDeliveryEstimate — расчётный срок доставки после отправки.
	shippedDeliveryEstimate = 3 * 24 * time.Hour
)

// BulkResult — итог массового обновления. Succeeded и Failed дизъюнктны и
// в сумме дают число запрошенных ID; отменённые запросы — не событие и не
// попадают ни туда, ни туда.
type BulkResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// MutationCoordinator — одиночные и массовые мутации статуса с
// оптимистичным обновлением коллекции и сбросом кэша.
type MutationCoordinator struct {
	gateway   ports.OrderGateway
	cache     ports.OrderCache
	store     *OrderStore
	notifier  ports.Notifier
	events    ports.EventPublisher
	log       ports.Logger
	requester domain.Requester
}

// NewMutationCoordinator — DI-конструктор.
func NewMutationCoordinator(
	gateway ports.OrderGateway,
	cache ports.OrderCache,
	store *OrderStore,
	notifier ports.Notifier,
	events ports.EventPublisher,
	log ports.Logger,
	requester domain.Requester,
) *MutationCoordinator {
	return &MutationCoordinator{
		gateway:   gateway,
		cache:     cache,
		store:     store,
		notifier:  notifier,
		events:    events,
		log:       log,
		requester: requester,
	}
}

// UpdateStatus — одиночное обновление. Подтверждение пользователя —
// обязанность вызывающего слоя: координатор не спрашивает. Без
// автоповторов: ошибка сразу уходит уведомлением с причиной сервера.
func (m *MutationCoordinator) UpdateStatus(ctx context.Context, orderID string, target domain.Status) error {
	order, ok := m.store.Get(orderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if !order.Status.CanTransition(target) {
		m.notifier.Push(ctx,
			fmt.Sprintf("Переход %s → %s недопустим", order.Status, target),
			domain.SeverityWarning)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	patch := m.buildPatch(target)
	if err := m.gateway.UpdateStatus(ctx, orderID, patch); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		metrics.OrderUpdates.WithLabelValues("single", "error").Inc()
		m.notifier.Push(ctx,
			fmt.Sprintf("Не удалось обновить заказ %s: %s", orderID, orderapi.ReasonOf(err)),
			domain.SeverityError)
		m.log.Errorf(ctx, "update status failed order=%s: %v", orderID, err)
		return err
	}

	// Сервер принял мутацию — оптимистично применяем её локально.
	m.store.ApplyStatusPatch(orderID, patch)
	m.cache.InvalidateAll(ctx)
	metrics.OrderUpdates.WithLabelValues("single", "ok").Inc()
	m.notifier.Push(ctx,
		fmt.Sprintf("Заказ %s: статус обновлён на «%s»", orderID, target.Info().Label),
		domain.SeveritySuccess)

	m.publishEvent(ctx, orderID, order.Status, target)
	return nil
}

// BulkUpdateStatus — массовое обновление: ID режутся на пачки по пять,
// пачки идут последовательно, запросы внутри пачки — конкурентно и
// объединяются по принципу all-settled. Ошибка одного заказа никогда не
// прерывает соседей. Отменённые запросы выпадают из подсчёта; если отменено
// всё, операция целиком — не событие.
func (m *MutationCoordinator) BulkUpdateStatus(ctx context.Context, orderIDs []string, target domain.Status) (BulkResult, error) {
	result := BulkResult{
		Succeeded: make([]string, 0, len(orderIDs)),
		Failed:    make([]string, 0),
	}
	if len(orderIDs) == 0 {
		return result, nil
	}

	patch := m.buildPatch(target)
	fromStatuses := make(map[string]domain.Status, len(orderIDs))

	for start := 0; start < len(orderIDs); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(orderIDs) {
			end = len(orderIDs)
		}
		batch := orderIDs[start:end]

		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, orderID := range batch {
			if order, ok := m.store.Get(orderID); ok {
				fromStatuses[orderID] = order.Status
			}

			wg.Add(1)
			go func(orderID string) {
				defer wg.Done()
				if err := m.gateway.UpdateStatus(ctx, orderID, patch); err != nil {
					// Отмена — не событие: заказ не считается ни успехом,
					// ни неудачей.
					if errors.Is(err, context.Canceled) {
						m.log.Infof(ctx, "bulk update cancelled order=%s", orderID)
						return
					}
					m.log.Warnf(ctx, "bulk update failed order=%s: %v", orderID, err)
					mu.Lock()
					result.Failed = append(result.Failed, orderID)
					mu.Unlock()
					return
				}
				mu.Lock()
				result.Succeeded = append(result.Succeeded, orderID)
				mu.Unlock()
			}(orderID)
		}
		wg.Wait()
	}

	// Полная отмена — не событие: состояние, выделение и кэш не трогаем,
	// итоговое уведомление не публикуется.
	if len(result.Succeeded) == 0 && len(result.Failed) == 0 {
		return result, nil
	}

	// Оптимистично патчим только успешные заказы.
	for _, orderID := range result.Succeeded {
		m.store.ApplyStatusPatch(orderID, patch)
	}
	m.store.ClearSelection()
	m.cache.InvalidateAll(ctx)

	m.notifyBulkOutcome(ctx, result, target)

	for _, orderID := range result.Succeeded {
		metrics.OrderUpdates.WithLabelValues("bulk", "ok").Inc()
		m.publishEvent(ctx, orderID, fromStatuses[orderID], target)
	}
	for range result.Failed {
		metrics.OrderUpdates.WithLabelValues("bulk", "error").Inc()
	}

	return result, nil
}
