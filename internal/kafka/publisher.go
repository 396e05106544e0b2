package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/ports"
)

// Проверка, что Publisher удовлетворяет порту EventPublisher.
var _ ports.EventPublisher = (*Publisher)(nil)

// PublisherConfig — подключение к топику событий смены статуса.
type PublisherConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher — публикация событий смены статуса для аналитики маркетплейса.
// Ключ сообщения — ID заказа: события одного заказа попадают в одну партицию
// и сохраняют порядок.
type Publisher struct {
	writer    *kafka.Writer
	log       ports.Logger
	closeOnce sync.Once
}

func NewPublisher(cfg PublisherConfig, log ports.Logger) *Publisher {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 5 * time.Second
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: wt,
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{writer: writer, log: log}
}

// PublishStatusChange — отправить событие; ошибки не ретраятся здесь,
// решение об этом — за вызывающим (мутация от них не зависит).
func (p *Publisher) PublishStatusChange(ctx context.Context, event domain.StatusChangeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  event.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write status event: %w", err)
	}
	return nil
}

// Close — закрывает writer. Вызывается при остановке приложения.
func (p *Publisher) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}

// NopPublisher — заглушка для конфигураций без шины событий.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChange(context.Context, domain.StatusChangeEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
