package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/pkg/metrics"
)

// buildPatch — тело мутации: целевой статус, запись журнала с актором и,
// при переходе в shipped, расчётная дата доставки (сейчас + 3 дня).
func (m *MutationCoordinator) buildPatch(target domain.Status) domain.StatusPatch {
	now := time.Now()
	patch := domain.StatusPatch{
		Status: target,
		History: domain.StatusEntry{
			Status:    target,
			Timestamp: now,
			UpdatedBy: m.requester.Actor(),
		},
	}
	if target == domain.StatusShipped {
		eta := now.Add(shippedDeliveryEstimate)
		patch.EstimatedDelivery = &eta
	}
	return patch
}

// notifyBulkOutcome — единое итоговое уведомление: только успехи,
// смесь успехов и неудач, либо ошибка, если не прошло ничего.
func (m *MutationCoordinator) notifyBulkOutcome(ctx context.Context, result BulkResult, target domain.Status) {
	okCount, failCount := len(result.Succeeded), len(result.Failed)
	switch {
	case failCount == 0 && okCount > 0:
		m.notifier.Push(ctx,
			fmt.Sprintf("Обновлено заказов: %d (статус «%s»)", okCount, target.Info().Label),
			domain.SeveritySuccess)
	case okCount > 0:
		m.notifier.Push(ctx,
			fmt.Sprintf("Обновлено: %d, с ошибкой: %d", okCount, failCount),
			domain.SeverityWarning)
	case failCount > 0:
		m.notifier.Push(ctx, "Не удалось обновить ни один из выбранных заказов", domain.SeverityError)
	}
}

// publishEvent — событие смены статуса во внешнюю шину; неуспех публикации
// не влияет на результат мутации.
func (m *MutationCoordinator) publishEvent(ctx context.Context, orderID string, from, to domain.Status) {
	event := domain.StatusChangeEvent{
		OrderID: orderID,
		From:    from,
		To:      to,
		Actor:   m.requester.Actor(),
		At:      time.Now(),
	}
	if err := m.events.PublishStatusChange(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		m.log.Warnf(ctx, "publish status event failed order=%s: %v", orderID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}
