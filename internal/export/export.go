package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

// ErrNothingToExport — пустой набор: экспорт предотвращается заранее,
// а не падает на полпути.
var ErrNothingToExport = errors.New("nothing to export")

// ErrUnknownFormat — неподдерживаемый формат экспорта.
var ErrUnknownFormat = errors.New("unknown export format")

// csvHeader — фиксированная шапка из девяти колонок; контракт файла,
// менять порядок нельзя.
var csvHeader = []string{
	"Order ID", "Customer Name", "Customer Email", "Status", "Total Amount",
	"Order Date", "Items Count", "Payment Method", "Delivery Address",
}

// File — готовый к отдаче файл экспорта.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Build — собирает файл экспорта выбранного формата из набора заказов
// (выбранные, иначе отфильтрованные — решает вызывающий слой).
func Build(format string, orders []*domain.Order, now time.Time) (*File, error) {
	if len(orders) == 0 {
		return nil, ErrNothingToExport
	}

	name := fmt.Sprintf("farmer-orders-%s.%s", now.Format("2006-01-02"), format)
	switch format {
	case "csv":
		return &File{Name: name, ContentType: "text/csv; charset=utf-8", Body: buildCSV(orders)}, nil
	case "json":
		body, err := json.MarshalIndent(orders, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode export json: %w", err)
		}
		return &File{Name: name, ContentType: "application/json", Body: body}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// buildCSV — каждое поле в двойных кавычках; запятые внутри полей
// заменяются на точки с запятой (контракт файла, encoding/csv так не умеет).
func buildCSV(orders []*domain.Order) []byte {
	var sb strings.Builder

	writeRow(&sb, csvHeader)
	for _, o := range orders {
		writeRow(&sb, []string{
			o.ID,
			o.CustomerName,
			o.CustomerEmail,
			string(o.Status),
			strconv.FormatFloat(o.TotalAmount, 'f', 2, 64),
			o.CreatedAt.Format("2006-01-02"),
			strconv.Itoa(len(o.Items)),
			o.PaymentMethod,
			o.DeliveryAddress,
		})
	}
	return []byte(sb.String())
}

func writeRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, ",", ";"))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}
