package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/greenbasket/farmdash/internal/domain"
)

// Sort — режим сортировки.
type Sort string

const (
	SortNewest       Sort = "newest"
	SortOldest       Sort = "oldest"
	SortHighestValue Sort = "highest-value"
	SortLowestValue  Sort = "lowest-value"
	SortCustomerName Sort = "customer-name"
)

// Density — плотность отображения; от неё зависит размер страницы.
type Density string

const (
	DensityCompact  Density = "compact"
	DensityDetailed Density = "detailed"
)

// StatusAll — сентинел «все статусы» для фильтра.
const StatusAll = "all"

// Params — входы конвейера. Сброс страницы на 1 при смене любого
// фильтра/сортировки — обязанность слоя, владеющего состоянием страницы.
type Params struct {
	Status  string
	Search  string
	From    *time.Time
	To      *time.Time
	Sort    Sort
	Density Density
	Page    int
}

// Result — страница результата и метаданные пагинации.
type Result struct {
	Orders     []*domain.Order `json:"orders"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// PageSize — 20 для компактного вида, 10 для детального.
func (d Density) PageSize() int {
	if d == DensityCompact {
		return 20
	}
	return 10
}

// Apply — чистый конвейер фильтр → поиск → диапазон дат → сортировка →
// пагинация. Вход не изменяется; повторное применение с теми же входами
// даёт тот же результат.
func Apply(orders []*domain.Order, p Params) Result {
	return paginate(Filter(orders, p), p.Page, p.Density.PageSize())
}

// Filter — тот же конвейер без пагинации (для экспорта всего
// отфильтрованного набора).
func Filter(orders []*domain.Order, p Params) []*domain.Order {
	filtered := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if !matchesStatus(o, p.Status) {
			continue
		}
		if !matchesSearch(o, p.Search) {
			continue
		}
		if !inDateRange(o, p.From, p.To) {
			continue
		}
		filtered = append(filtered, o)
	}

	sortOrders(filtered, p.Sort)
	return filtered
}

// matchesStatus — точное сравнение без учёта регистра; "all" и пустое
// значение пропускают всё.
func matchesStatus(o *domain.Order, status string) bool {
	if status == "" || strings.EqualFold(status, StatusAll) {
		return true
	}
	return strings.EqualFold(string(o.Status), status)
}

// matchesSearch — литеральный подстрочный поиск без учёта регистра по
// позициям (название/категория), покупателю (имя/email) и ID заказа.
// Заказ проходит, если совпало любое поле.
func matchesSearch(o *domain.Order, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}

	if contains(o.ID, needle) || contains(o.CustomerName, needle) || contains(o.CustomerEmail, needle) {
		return true
	}
	for _, item := range o.Items {
		if contains(item.Name, needle) || contains(item.Category, needle) {
			return true
		}
	}
	return false
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

// inDateRange — нижняя граница включительно; верхняя расширяется до конца
// дня (23:59:59.999).
func inDateRange(o *domain.Order, from, to *time.Time) bool {
	if from != nil && o.CreatedAt.Before(*from) {
		return false
	}
	if to != nil {
		endOfDay := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999_000_000, to.Location())
		if o.CreatedAt.After(endOfDay) {
			return false
		}
	}
	return true
}

// sortOrders — стабильная сортировка; равные элементы сохраняют прежний
// относительный порядок.
func sortOrders(orders []*domain.Order, mode Sort) {
	switch mode {
	case SortOldest:
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		})
	case SortHighestValue:
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].Value() > orders[j].Value()
		})
	case SortLowestValue:
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].Value() < orders[j].Value()
		})
	case SortCustomerName:
		// Сравнение имён с учётом локали.
		col := collate.New(language.Und, collate.Loose)
		sort.SliceStable(orders, func(i, j int) bool {
			return col.CompareString(orders[i].CustomerName, orders[j].CustomerName) < 0
		})
	default: // SortNewest
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		})
	}
}

func paginate(orders []*domain.Order, page, pageSize int) Result {
	total := len(orders)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Orders:     orders[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
