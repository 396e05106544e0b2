package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

var exportNow = time.Date(2026, time.March, 10, 15, 4, 5, 0, time.UTC)

func exportOrders() []*domain.Order {
	return []*domain.Order{
		{
			ID:              "ord-1",
			CustomerName:    "Анна Иванова",
			CustomerEmail:   "anna@mail.ru",
			Status:          domain.StatusShipped,
			TotalAmount:     1249.5,
			PaymentMethod:   "card",
			DeliveryAddress: "ул. Ленина, д. 5, Москва",
			CreatedAt:       time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
			Items:           []domain.Item{{Name: "Томаты"}, {Name: "Мёд"}},
		},
		{
			ID:            "ord-2",
			CustomerName:  "Борис",
			CustomerEmail: "boris@mail.ru",
			Status:        domain.StatusPending,
			TotalAmount:   300,
			PaymentMethod: "cash",
			CreatedAt:     time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC),
			Items:         []domain.Item{{Name: "Сыр"}},
		},
	}
}

func TestBuild_CSV(t *testing.T) {
	file, err := Build("csv", exportOrders(), exportNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if file.Name != "farmer-orders-2026-03-10.csv" {
		t.Fatalf("name = %q", file.Name)
	}
	if file.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("content type = %q", file.ContentType)
	}

	lines := strings.Split(strings.TrimRight(string(file.Body), "\n"), "\n")
	if len(lines) != 3 { // шапка + два заказа
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != `"Order ID","Customer Name","Customer Email","Status","Total Amount","Order Date","Items Count","Payment Method","Delivery Address"` {
		t.Fatalf("header = %s", lines[0])
	}

	// Запятые внутри полей заменены на точки с запятой.
	if !strings.Contains(lines[1], `"ул. Ленина; д. 5; Москва"`) {
		t.Fatalf("commas not replaced: %s", lines[1])
	}
	if !strings.Contains(lines[1], `"1249.50"`) || !strings.Contains(lines[1], `"2"`) {
		t.Fatalf("amount/count missing: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"ord-2"`) || !strings.Contains(lines[2], `"2026-03-03"`) {
		t.Fatalf("second row malformed: %s", lines[2])
	}
}

func TestBuild_JSON(t *testing.T) {
	file, err := Build("json", exportOrders(), exportNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if file.Name != "farmer-orders-2026-03-10.json" {
		t.Fatalf("name = %q", file.Name)
	}

	var decoded []*domain.Order
	if err := json.Unmarshal(file.Body, &decoded); err != nil {
		t.Fatalf("export json is not valid: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "ord-1" {
		t.Fatalf("decoded = %d orders", len(decoded))
	}
}

func TestBuild_EmptySet(t *testing.T) {
	if _, err := Build("csv", nil, exportNow); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("err = %v, want ErrNothingToExport", err)
	}
}

func TestBuild_UnknownFormat(t *testing.T) {
	if _, err := Build("xml", exportOrders(), exportNow); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}
