package ports

import (
	"context"

	"github.com/greenbasket/farmdash/internal/domain"
)

// Notifier — публикация пользовательских уведомлений.
type Notifier interface {
	// Push — добавить уведомление; возвращает его идентификатор.
	Push(ctx context.Context, message string, severity domain.Severity) string
}
