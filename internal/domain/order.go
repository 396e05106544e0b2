package domain

import "time"

// Order — каноническая форма заказа после нормализации на границе с API.
// Внутренние слои работают только с этой схемой и не знают о вариантах
// полей источника.
type Order struct {
	ID              string            `json:"id"`
	CustomerName    string            `json:"customerName"`
	CustomerEmail   string            `json:"customerEmail"`
	DeliveryAddress string            `json:"deliveryAddress"`
	Status          Status            `json:"status"`
	FarmerStatuses  map[string]Status `json:"farmerStatuses,omitempty"`
	Items           []Item            `json:"items"`
	FarmerSubtotal  float64           `json:"farmerSubtotal,omitempty"`
	TotalAmount     float64           `json:"totalAmount"`
	PaymentMethod   string            `json:"paymentMethod"`
	CreatedAt       time.Time         `json:"createdAt"`

	EstimatedDelivery *time.Time    `json:"estimatedDeliveryDate,omitempty"`
	StatusHistory     []StatusEntry `json:"statusHistory,omitempty"`
}

// Item — позиция заказа. После привязки к заказу не изменяется:
// смена статуса живёт на заказе/группе продавца, не на позиции.
type Item struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	FarmerID    string  `json:"farmerId"`
	FarmerEmail string  `json:"farmerEmail"`
	FarmerName  string  `json:"farmerName,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// StatusEntry — запись журнала смены статуса (append-only).
type StatusEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
}

// StatusPatch — частичное обновление заказа для удалённого стора.
type StatusPatch struct {
	Status            Status      `json:"status"`
	History           StatusEntry `json:"statusHistory"`
	EstimatedDelivery *time.Time  `json:"estimatedDeliveryDate,omitempty"`
}

// StatusChangeEvent — событие смены статуса для внешних потребителей.
type StatusChangeEvent struct {
	OrderID string    `json:"orderId"`
	From    Status    `json:"from"`
	To      Status    `json:"to"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

// Requester — идентичность запрашивающего фермера; из неё строится ключ кэша.
type Requester struct {
	ID    string
	Email string
	Name  string
}

// CacheKey — стабильный составной ключ: идентификатор в приоритете.
// Префиксы исключают коллизию между ID одного фермера и email другого.
func (r Requester) CacheKey() string {
	switch {
	case r.ID != "" && r.Email != "":
		return "id:" + r.ID + "|email:" + r.Email
	case r.ID != "":
		return "id:" + r.ID
	default:
		return "email:" + r.Email
	}
}

// Actor — имя для журнала статусов.
func (r Requester) Actor() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Email != "" {
		return r.Email
	}
	return "farmer"
}

// IsMixed — заказ охватывает нескольких продавцов.
func (o *Order) IsMixed() bool { return o.Status == StatusMixed }

// Value — сумма для сортировки: доля продавца, если она посчитана, иначе итог.
func (o *Order) Value() float64 {
	if o.FarmerSubtotal > 0 {
		return o.FarmerSubtotal
	}
	return o.TotalAmount
}

// Clone — глубокая копия заказа, чтобы кэш и снимки не делили память с
// изменяемой коллекцией.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cloned := *o
	if o.Items != nil {
		cloned.Items = append([]Item(nil), o.Items...)
	}
	if o.StatusHistory != nil {
		cloned.StatusHistory = append([]StatusEntry(nil), o.StatusHistory...)
	}
	if o.FarmerStatuses != nil {
		cloned.FarmerStatuses = make(map[string]Status, len(o.FarmerStatuses))
		for k, v := range o.FarmerStatuses {
			cloned.FarmerStatuses[k] = v
		}
	}
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		cloned.EstimatedDelivery = &t
	}
	return &cloned
}

// CloneOrders — копия коллекции (см. Clone).
func CloneOrders(orders []*Order) []*Order {
	if orders == nil {
		return nil
	}
	cloned := make([]*Order, len(orders))
	for i, o := range orders {
		cloned[i] = o.Clone()
	}
	return cloned
}
