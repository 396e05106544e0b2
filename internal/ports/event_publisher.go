package ports

import (
	"context"

	"github.com/greenbasket/farmdash/internal/domain"
)

// EventPublisher — публикация событий смены статуса во внешнюю шину.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, event domain.StatusChangeEvent) error
	Close() error
}
