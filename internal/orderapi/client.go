package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/ports"
)

// Проверка, что Client удовлетворяет порту OrderGateway.
var _ ports.OrderGateway = (*Client)(nil)

// APIError — неуспешный ответ удалённого стора; Reason берётся из тела
// `{"error": "..."}` и показывается пользователю как есть.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("order api: status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("order api: status %d", e.StatusCode)
}

// Client — HTTP-клиент удалённого стора заказов.
type Client struct {
	baseURL string
	http    *http.Client
	log     ports.Logger
}

// NewClient — конструктор. timeout — таймаут одной попытки; ретраи живут
// уровнем выше, в SyncEngine.
func NewClient(baseURL string, timeout time.Duration, log ports.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchOrders — GET /orders с идентичностью фермера в query.
// Ответ нормализуется в каноническую схему сразу на границе.
func (c *Client) FetchOrders(ctx context.Context, requester domain.Requester) ([]*domain.Order, error) {
	q := url.Values{}
	if requester.ID != "" {
		q.Set("farmerId", requester.ID)
	}
	if requester.Email != "" {
		q.Set("email", requester.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	// Исключаем промежуточные HTTP-кэши: свежесть обеспечивает наш слой кэша.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("X-Requested-With", "farmdash")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	var payload struct {
		Orders []rawOrder `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode orders response: %w", err)
	}

	orders := make([]*domain.Order, 0, len(payload.Orders))
	for i := range payload.Orders {
		order := payload.Orders[i].normalize()
		if order.ID == "" {
			c.log.Warnf(ctx, "skipping order without id at index %d", i)
			continue
		}
		// Агрегация по продавцам такие позиции отбросит — фиксируем это
		// на границе, сама выборка не фатальна.
		if n := itemsWithoutVendor(order.Items); n > 0 {
			c.log.Warnf(ctx, "order %s: %d item(s) without vendor identity, excluded from vendor grouping", order.ID, n)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatus — PATCH /orders/{id} с телом частичного обновления.
func (c *Client) UpdateStatus(ctx context.Context, orderID string, patch domain.StatusPatch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode status patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/orders/"+url.PathEscape(orderID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "farmdash")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("update status: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// apiError — читает `{"error": "..."}` из неуспешного ответа, если оно есть.
func (c *Client) apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	return &APIError{StatusCode: resp.StatusCode, Reason: body.Error}
}

// ReasonOf — причина для пользовательского сообщения: текст сервера, если
// он был, иначе общее описание ошибки.
func ReasonOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Reason != "" {
		return apiErr.Reason
	}
	return err.Error()
}
