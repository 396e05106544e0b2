package usecase

import (
	"sync"

	"github.com/greenbasket/farmdash/internal/domain"
)

// OrderStore — разделяемая видимая коллекция заказов и набор выделенных
// строк дашборда. Пишут сюда только SyncEngine и MutationCoordinator;
// остальные слои читают снимки. В многопоточном рантайме коллекция
// обязана жить под явным мьютексом.
type OrderStore struct {
	mu        sync.RWMutex
	orders    []*domain.Order
	selection map[string]struct{}
	loaded    bool
}

func NewOrderStore() *OrderStore {
	return &OrderStore{selection: make(map[string]struct{})}
}

// Replace — заменить коллекцию целиком (успешный fetch или попадание в кэш).
func (s *OrderStore) Replace(orders []*domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.loaded = true
}

// Clear — опустошить коллекцию (исчерпание ретраев).
func (s *OrderStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = nil
}

// Snapshot — копия коллекции для проекций; заказы клонируются, чтобы
// читатели не делили память с последующими мутациями.
func (s *OrderStore) Snapshot() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneOrders(s.orders)
}

// Len — размер видимой коллекции.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Loaded — была ли хотя бы одна успешная загрузка.
func (s *OrderStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Get — заказ по ID (копия) или (nil, false).
func (s *OrderStore) Get(orderID string) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == orderID {
			return o.Clone(), true
		}
	}
	return nil, false
}

// ApplyStatusPatch — оптимистично применить подтверждённую мутацию:
// статус, запись журнала, расчётная дата доставки.
func (s *OrderStore) ApplyStatusPatch(orderID string, patch domain.StatusPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID != orderID {
			continue
		}
		o.Status = patch.Status
		o.StatusHistory = append(o.StatusHistory, patch.History)
		if patch.EstimatedDelivery != nil {
			t := *patch.EstimatedDelivery
			o.EstimatedDelivery = &t
		}
		return true
	}
	return false
}

// SetSelection — заменить набор выделенных заказов.
func (s *OrderStore) SetSelection(orderIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		s.selection[id] = struct{}{}
	}
}

// ClearSelection — снять выделение (после bulk-мутации).
func (s *OrderStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// SelectedIDs — выделенные ID в порядке следования коллекции.
func (s *OrderStore) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.selection))
	for _, o := range s.orders {
		if _, ok := s.selection[o.ID]; ok {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// SelectedOrders — копии выделенных заказов в порядке коллекции.
func (s *OrderStore) SelectedOrders() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	selected := make([]*domain.Order, 0, len(s.selection))
	for _, o := range s.orders {
		if _, ok := s.selection[o.ID]; ok {
			selected = append(selected, o.Clone())
		}
	}
	return selected
}
