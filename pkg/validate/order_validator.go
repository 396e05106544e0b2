package validate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу ports.OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// OrderValidator — структура для валидации нормализованного заказа.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// Validate — проверяет корректность полей заказа.
func (v *OrderValidator) Validate(_ context.Context, order *domain.Order) error {
	if err := v.validateCore(order); err != nil {
		return err
	}
	if err := v.validateItems(order.Items); err != nil {
		return err
	}
	return v.validateMixed(order)
}

// validateCore — валидация основных полей заказа.
func (v *OrderValidator) validateCore(order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if order.ID == "" {
		return fmt.Errorf("%w: id обязателен", ErrInvalidOrder)
	}
	if order.CreatedAt.IsZero() || order.CreatedAt.Before(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		return fmt.Errorf("%w: createdAt некорректен", ErrInvalidOrder)
	}
	if order.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount должен быть неотрицательным", ErrInvalidOrder)
	}
	return nil
}

// Валидация позиций
func (v *OrderValidator) validateItems(items []domain.Item) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items не должен быть пустым", ErrInvalidOrder)
	}
	for i, item := range items {
		if item.Name == "" {
			return fmt.Errorf("%w: items[%d].name обязателен", ErrInvalidOrder, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity должен быть положительным", ErrInvalidOrder, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: items[%d].price должен быть неотрицательным", ErrInvalidOrder, i)
		}
	}
	return nil
}

// validateMixed — инвариант смешанного заказа: позиции от нескольких продавцов
// требуют status=mixed и записи в FarmerStatuses (в сырой или закодированной
// форме ключа) для каждого продавца.
func (v *OrderValidator) validateMixed(order *domain.Order) error {
	farmers := domain.DistinctFarmers(order.Items)
	if len(farmers) <= 1 {
		return nil
	}
	if !order.IsMixed() {
		return fmt.Errorf("%w: заказ от %d продавцов обязан иметь status=mixed", ErrInvalidOrder, len(farmers))
	}
	for _, key := range farmers {
		if _, ok := order.FarmerStatuses[domain.EncodeStatusKey(key)]; ok {
			continue
		}
		if _, ok := order.FarmerStatuses[key]; ok {
			continue
		}
		return fmt.Errorf("%w: farmerStatuses не содержит записи для продавца %q", ErrInvalidOrder, key)
	}
	return nil
}
