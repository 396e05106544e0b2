package orderapi

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/greenbasket/farmdash/internal/domain"
)

// Исторически записи заказов писались разными версиями витрины, поэтому
// источник присылает несколько вариантов одних и тех же полей. Вся
// вариативность гасится здесь; дальше по слоям живёт только domain.Order.

type rawOrder struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
	MongoID string `json:"_id"`

	CustomerName string `json:"customerName"`
	UserName     string `json:"userName"`
	Name         string `json:"name"`

	CustomerEmail string `json:"customerEmail"`
	Email         string `json:"email"`

	DeliveryAddress string      `json:"deliveryAddress"`
	Address         *rawAddress `json:"address"`

	Status         string            `json:"status"`
	FarmerStatuses map[string]string `json:"farmerStatuses"`

	Items      []rawItem `json:"items"`
	OrderItems []rawItem `json:"orderItems"`

	TotalAmount    flexFloat `json:"totalAmount"`
	Total          flexFloat `json:"total"`
	FarmerSubtotal flexFloat `json:"farmerSubtotal"`

	PaymentMethod string `json:"paymentMethod"`

	CreatedAt flexTime `json:"createdAt"`

	EstimatedDelivery *time.Time `json:"estimatedDeliveryDate"`

	StatusHistory []rawStatusEntry `json:"statusHistory"`
}

type rawAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type rawItem struct {
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	ProductName string    `json:"productName"`
	Category    string    `json:"category"`
	FarmerID    string    `json:"farmerId"`
	FarmerEmail string    `json:"farmerEmail"`
	FarmerName  string    `json:"farmerName"`
	Price       flexFloat `json:"price"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit"`
	Image       string    `json:"image"`
}

type rawStatusEntry struct {
	Status    string   `json:"status"`
	Timestamp flexTime `json:"timestamp"`
	UpdatedBy string   `json:"updatedBy"`
}

func (r *rawOrder) normalize() *domain.Order {
	order := &domain.Order{
		ID:              firstNonEmpty(r.ID, r.OrderID, r.MongoID),
		CustomerName:    firstNonEmpty(r.CustomerName, r.UserName, r.Name),
		CustomerEmail:   firstNonEmpty(r.CustomerEmail, r.Email),
		DeliveryAddress: r.deliveryAddress(),
		Status:          domain.ParseStatus(r.Status),
		TotalAmount:     firstPositive(float64(r.TotalAmount), float64(r.Total)),
		FarmerSubtotal:  float64(r.FarmerSubtotal),
		PaymentMethod:   r.PaymentMethod,
		CreatedAt:       time.Time(r.CreatedAt),

		EstimatedDelivery: r.EstimatedDelivery,
	}

	items := r.Items
	if len(items) == 0 {
		items = r.OrderItems
	}
	order.Items = make([]domain.Item, 0, len(items))
	for _, it := range items {
		order.Items = append(order.Items, domain.Item{
			ProductID:   it.ProductID,
			Name:        firstNonEmpty(it.Name, it.ProductName),
			Category:    it.Category,
			FarmerID:    it.FarmerID,
			FarmerEmail: it.FarmerEmail,
			FarmerName:  it.FarmerName,
			Price:       float64(it.Price),
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Image:       it.Image,
		})
	}

	if len(r.FarmerStatuses) > 0 {
		order.FarmerStatuses = make(map[string]domain.Status, len(r.FarmerStatuses))
		for key, raw := range r.FarmerStatuses {
			// Ключи храним как есть: разрешение пробует обе конвенции.
			order.FarmerStatuses[key] = domain.Status(strings.ToLower(strings.TrimSpace(raw)))
		}
	}

	for _, h := range r.StatusHistory {
		order.StatusHistory = append(order.StatusHistory, domain.StatusEntry{
			Status:    domain.ParseStatus(h.Status),
			Timestamp: time.Time(h.Timestamp),
			UpdatedBy: h.UpdatedBy,
		})
	}

	return order
}

func (r *rawOrder) deliveryAddress() string {
	if r.DeliveryAddress != "" {
		return r.DeliveryAddress
	}
	if r.Address == nil {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, p := range []string{r.Address.Street, r.Address.City, r.Address.Region, r.Address.Zip, r.Address.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// itemsWithoutVendor — число позиций без какой-либо идентичности продавца.
func itemsWithoutVendor(items []domain.Item) int {
	n := 0
	for _, it := range items {
		if it.FarmerEmail == "" && it.FarmerID == "" {
			n++
		}
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// flexFloat — число, которое источник может прислать числом или строкой.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexTime — время в RFC3339 или unix-миллисекундах.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*t = flexTime(time.Time{})
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = flexTime(time.UnixMilli(ms).UTC())
		return nil
	}
	var parsed time.Time
	if err := json.Unmarshal(data, &parsed); err != nil {
		*t = flexTime(time.Time{})
		return nil
	}
	*t = flexTime(parsed)
	return nil
}
