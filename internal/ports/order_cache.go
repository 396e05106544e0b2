package ports

import (
	"context"

	"github.com/greenbasket/farmdash/internal/domain"
)

// OrderCache — кэш коллекций заказов по ключу запрашивающего.
// Требования к реализации: потокобезопасность; возврат копий; запись с
// истекшим TTL ведёт себя как отсутствующая.
type OrderCache interface {
	// Get — вернуть коллекцию по ключу; (orders, true) при попадании,
	// (nil, false) при промахе или истечении TTL.
	Get(ctx context.Context, key string) ([]*domain.Order, bool)

	// Set — сохранить коллекцию; попутно подчищает истекшие записи.
	Set(ctx context.Context, key string, orders []*domain.Order) error

	// InvalidateAll — безусловно опустошить кэш (после любой мутации).
	InvalidateAll(ctx context.Context)
}
