package ports

import (
	"context"

	"github.com/greenbasket/farmdash/internal/domain"
)

// OrderValidator — доменная проверка заказа после нормализации.
type OrderValidator interface {
	Validate(ctx context.Context, order *domain.Order) error
}
