package ports

import (
	"context"

	"github.com/greenbasket/farmdash/internal/domain"
)

// OrderGateway — доступ к удалённому стору заказов (REST-ресурс).
// Реализация обязана уважать отмену контекста и возвращать
// context.Canceled как есть, без обёртывания в свои ошибки.
type OrderGateway interface {
	// FetchOrders — получить заказы фермера. Возвращает нормализованные записи.
	FetchOrders(ctx context.Context, requester domain.Requester) ([]*domain.Order, error)

	// UpdateStatus — частичное обновление статуса заказа по ID.
	UpdateStatus(ctx context.Context, orderID string, patch domain.StatusPatch) error
}
