package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/ports"
	"github.com/greenbasket/farmdash/pkg/metrics"
)

// Проверка, что Bus удовлетворяет порту Notifier.
var _ ports.Notifier = (*Bus)(nil)

// Notification — пользовательское уведомление.
type Notification struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Severity  domain.Severity `json:"severity"`
	CreatedAt time.Time       `json:"createdAt"`
}

const (
	defaultTTL   = 5 * time.Second
	defaultLimit = 5
)

// Bus — самоочищающийся журнал уведомлений: каждое живёт ttl, видимый
// список — кольцо из limit новейших. Фоновых таймеров нет, истекшие
// отфильтровываются при чтении.
type Bus struct {
	ttl   time.Duration
	limit int

	mu    sync.Mutex
	items []Notification
}

func NewBus() *Bus {
	return &Bus{ttl: defaultTTL, limit: defaultLimit}
}

// NewBusWith — конструктор с параметрами (для тестов).
func NewBusWith(ttl time.Duration, limit int) *Bus {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Bus{ttl: ttl, limit: limit}
}

// Push — добавить уведомление; старше limit новейших вытесняются насовсем.
func (b *Bus) Push(_ context.Context, message string, severity domain.Severity) string {
	n := Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, n)
	if len(b.items) > b.limit {
		b.items = append([]Notification(nil), b.items[len(b.items)-b.limit:]...)
	}

	metrics.Notifications.WithLabelValues(string(severity)).Inc()
	return n.ID
}

// List — актуальные уведомления (новые в конце); истекшие удаляются.
func (b *Bus) List() []Notification {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	alive := b.items[:0]
	for _, n := range b.items {
		if now.Sub(n.CreatedAt) < b.ttl {
			alive = append(alive, n)
		}
	}
	b.items = alive

	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}
