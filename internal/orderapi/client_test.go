package orderapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

type testLogger struct{}

func (testLogger) Infof(_ context.Context, _ string, _ ...any)  {}
func (testLogger) Warnf(_ context.Context, _ string, _ ...any)  {}
func (testLogger) Errorf(_ context.Context, _ string, _ ...any) {}

// warnRecorder — копит предупреждения для проверок границы.
type warnRecorder struct {
	mu    sync.Mutex
	warns []string
}

func (r *warnRecorder) Infof(_ context.Context, _ string, _ ...any) {}

func (r *warnRecorder) Warnf(_ context.Context, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, fmt.Sprintf(format, args...))
}

func (r *warnRecorder) Errorf(_ context.Context, _ string, _ ...any) {}

func (r *warnRecorder) hasWarnContaining(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warns {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// TestClient_FetchOrders — идентичность в query, анти-кэш заголовки,
// нормализация ответа, записи без id пропускаются.
func TestClient_FetchOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("farmerId") != "f1" || r.URL.Query().Get("email") != "ivan@farm.ru" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("Cache-Control") != "no-cache" || r.Header.Get("X-Requested-With") != "farmdash" {
			t.Fatalf("headers = %v", r.Header)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders": [
			{"id": "ord-1", "status": "pending", "items": [{"name": "Томаты", "quantity": 1, "price": 100}], "totalAmount": 100, "createdAt": "2026-03-01T10:00:00Z"},
			{"status": "pending", "createdAt": "2026-03-01T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger{})
	orders, err := client.FetchOrders(context.Background(), domain.Requester{ID: "f1", Email: "ivan@farm.ru"})
	if err != nil {
		t.Fatalf("FetchOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "ord-1" {
		t.Fatalf("orders = %d, want only ord-1 (id-less skipped)", len(orders))
	}
}

// TestClient_FetchOrders_LogsItemsWithoutVendor — позиции без идентичности
// продавца не фатальны, но оставляют предупреждение в логе.
func TestClient_FetchOrders_LogsItemsWithoutVendor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders": [
			{"id": "ord-1", "status": "pending", "createdAt": "2026-03-01T10:00:00Z", "items": [
				{"name": "Томаты", "quantity": 1, "price": 100, "farmerEmail": "ivan@farm.ru"},
				{"name": "Ничей", "quantity": 1, "price": 50}
			]}
		]}`))
	}))
	defer srv.Close()

	log := &warnRecorder{}
	client := NewClient(srv.URL, time.Second, log)
	orders, err := client.FetchOrders(context.Background(), domain.Requester{ID: "f1"})
	if err != nil {
		t.Fatalf("FetchOrders: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("orders = %+v, want one order with both items kept", orders)
	}
	if !log.hasWarnContaining("ord-1") {
		t.Fatalf("expected a warning about vendor-less items, got %v", log.warns)
	}
}

// TestClient_FetchOrders_APIError — неуспешный статус превращается в
// APIError с текстом сервера.
func TestClient_FetchOrders_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "база недоступна"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger{})
	_, err := client.FetchOrders(context.Background(), domain.Requester{ID: "f1"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Reason != "база недоступна" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if ReasonOf(err) != "база недоступна" {
		t.Fatalf("ReasonOf = %q", ReasonOf(err))
	}
}

// TestClient_FetchOrders_Cancellation — отмена контекста возвращается как
// context.Canceled без обёртки.
func TestClient_FetchOrders_Cancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Minute, testLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.FetchOrders(ctx, domain.Requester{ID: "f1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// TestClient_UpdateStatus — PATCH по id с JSON-телом патча.
func TestClient_UpdateStatus(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("content type = %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger{})
	patch := domain.StatusPatch{
		Status:  domain.StatusConfirmed,
		History: domain.StatusEntry{Status: domain.StatusConfirmed, Timestamp: time.Now(), UpdatedBy: "Иван"},
	}
	if err := client.UpdateStatus(context.Background(), "ord-1", patch); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/orders/ord-1" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
}

func TestClient_UpdateStatus_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "статус уже изменён"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger{})
	err := client.UpdateStatus(context.Background(), "ord-1", domain.StatusPatch{Status: domain.StatusShipped})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("err = %v, want conflict APIError", err)
	}
}
