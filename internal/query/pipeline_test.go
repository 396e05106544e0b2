package query

import (
	"testing"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func fixtureOrders() []*domain.Order {
	return []*domain.Order{
		{ID: "ord-1", CustomerName: "Борис", CustomerEmail: "boris@mail.ru", Status: domain.StatusPending, TotalAmount: 300, CreatedAt: day(1),
			Items: []domain.Item{{Name: "Томаты", ProductID: "p1", Category: "Овощи"}}},
		{ID: "ord-2", CustomerName: "Анна", CustomerEmail: "anna@mail.ru", Status: domain.StatusShipped, TotalAmount: 100, CreatedAt: day(2),
			Items: []domain.Item{{Name: "Мёд", ProductID: "p2", Category: "Бакалея"}}},
		{ID: "ord-3", CustomerName: "Виктор", CustomerEmail: "victor@mail.ru", Status: domain.StatusDelivered, TotalAmount: 500, CreatedAt: day(3),
			Items: []domain.Item{{Name: "Сыр", ProductID: "p3", Category: "Молочное"}}},
	}
}

func TestApply_StatusFilter(t *testing.T) {
	res := Apply(fixtureOrders(), Params{Status: "SHIPPED"})
	if res.Total != 1 || res.Orders[0].ID != "ord-2" {
		t.Fatalf("status filter: total=%d orders=%v", res.Total, res.Orders)
	}

	res = Apply(fixtureOrders(), Params{Status: StatusAll})
	if res.Total != 3 {
		t.Fatalf("status=all: total=%d, want 3", res.Total)
	}
}

// TestApply_Search — литеральный поиск по ИЛИ: позиции, покупатель, ID.
func TestApply_Search(t *testing.T) {
	cases := []struct {
		search string
		wantID string
	}{
		{"томат", "ord-1"},   // название позиции
		{"ANNA", "ord-2"},    // email без учёта регистра
		{"ord-3", "ord-3"},   // ID заказа
		{"молочно", "ord-3"}, // категория
	}

	for _, tc := range cases {
		res := Apply(fixtureOrders(), Params{Search: tc.search})
		if res.Total != 1 || res.Orders[0].ID != tc.wantID {
			t.Fatalf("search %q: total=%d, want only %s", tc.search, res.Total, tc.wantID)
		}
	}

	if res := Apply(fixtureOrders(), Params{Search: "нет такого"}); res.Total != 0 {
		t.Fatalf("search miss: total=%d, want 0", res.Total)
	}

	// Идентификатор товара в поиске не участвует.
	if res := Apply(fixtureOrders(), Params{Search: "p1"}); res.Total != 0 {
		t.Fatalf("product id search: total=%d, want 0", res.Total)
	}
}

// TestApply_DateRange — нижняя граница включительно, верхняя расширяется
// до конца дня.
func TestApply_DateRange(t *testing.T) {
	from := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	res := Apply(fixtureOrders(), Params{From: &from, To: &to})
	if res.Total != 1 || res.Orders[0].ID != "ord-2" {
		t.Fatalf("date range: total=%d, want ord-2 only", res.Total)
	}

	// Заказ в 12:00 того же дня проходит верхнюю границу.
	res = Apply(fixtureOrders(), Params{To: &to})
	if res.Total != 2 {
		t.Fatalf("to-only range: total=%d, want 2", res.Total)
	}
}

func TestApply_Sorts(t *testing.T) {
	firstID := func(p Params) string {
		return Apply(fixtureOrders(), p).Orders[0].ID
	}

	if got := firstID(Params{}); got != "ord-3" { // newest по умолчанию
		t.Fatalf("default sort first = %s, want ord-3", got)
	}
	if got := firstID(Params{Sort: SortOldest}); got != "ord-1" {
		t.Fatalf("oldest first = %s, want ord-1", got)
	}
	if got := firstID(Params{Sort: SortHighestValue}); got != "ord-3" {
		t.Fatalf("highest-value first = %s, want ord-3", got)
	}
	if got := firstID(Params{Sort: SortLowestValue}); got != "ord-2" {
		t.Fatalf("lowest-value first = %s, want ord-2", got)
	}
	if got := firstID(Params{Sort: SortCustomerName}); got != "ord-2" { // Анна
		t.Fatalf("customer-name first = %s, want ord-2", got)
	}
}

// TestApply_SortUsesFarmerSubtotal — при посчитанной доле продавца
// сортировка по сумме использует её, а не общий итог.
func TestApply_SortUsesFarmerSubtotal(t *testing.T) {
	orders := fixtureOrders()
	orders[2].FarmerSubtotal = 50 // итог 500, но доля продавца меньше всех

	res := Apply(orders, Params{Sort: SortHighestValue})
	if res.Orders[0].ID != "ord-1" || res.Orders[2].ID != "ord-3" {
		t.Fatalf("subtotal sort order: %s..%s", res.Orders[0].ID, res.Orders[2].ID)
	}
}

func TestApply_Pagination(t *testing.T) {
	orders := make([]*domain.Order, 0, 25)
	for i := 0; i < 25; i++ {
		orders = append(orders, &domain.Order{ID: string(rune('a' + i)), CreatedAt: day(1).Add(time.Duration(i) * time.Hour)})
	}

	// Детальный вид: страница 10 → 3 страницы.
	res := Apply(orders, Params{Density: DensityDetailed, Page: 3})
	if res.TotalPages != 3 || res.PageSize != 10 || len(res.Orders) != 5 {
		t.Fatalf("detailed page 3: totalPages=%d pageSize=%d len=%d", res.TotalPages, res.PageSize, len(res.Orders))
	}

	// Компактный вид: страница 20 → 2 страницы.
	res = Apply(orders, Params{Density: DensityCompact, Page: 1})
	if res.TotalPages != 2 || res.PageSize != 20 || len(res.Orders) != 20 {
		t.Fatalf("compact page 1: totalPages=%d pageSize=%d len=%d", res.TotalPages, res.PageSize, len(res.Orders))
	}

	// Выход за границы прижимается к последней странице.
	res = Apply(orders, Params{Density: DensityCompact, Page: 99})
	if res.Page != 2 || len(res.Orders) != 5 {
		t.Fatalf("page clamp: page=%d len=%d", res.Page, len(res.Orders))
	}
	res = Apply(orders, Params{Density: DensityCompact, Page: -1})
	if res.Page != 1 {
		t.Fatalf("negative page: page=%d, want 1", res.Page)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	res := Apply(nil, Params{})
	if res.Total != 0 || res.TotalPages != 1 || res.Page != 1 {
		t.Fatalf("empty input: %+v", res)
	}
}

// TestApply_PureAndIdempotent — вход не изменяется, повторное применение
// даёт тот же результат.
func TestApply_PureAndIdempotent(t *testing.T) {
	orders := fixtureOrders()
	p := Params{Status: "all", Sort: SortOldest}

	first := Apply(orders, p)
	second := Apply(orders, p)

	if len(first.Orders) != len(second.Orders) {
		t.Fatalf("not idempotent: %d vs %d", len(first.Orders), len(second.Orders))
	}
	for i := range first.Orders {
		if first.Orders[i].ID != second.Orders[i].ID {
			t.Fatalf("not idempotent at %d: %s vs %s", i, first.Orders[i].ID, second.Orders[i].ID)
		}
	}

	// Исходный срез остался в прежнем порядке.
	if orders[0].ID != "ord-1" || orders[1].ID != "ord-2" || orders[2].ID != "ord-3" {
		t.Fatalf("input mutated: %s %s %s", orders[0].ID, orders[1].ID, orders[2].ID)
	}
}
