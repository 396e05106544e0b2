package domain

import "strings"

// Status — статус выполнения заказа.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"

	// StatusCancelled — терминальный статус вне упорядоченной цепочки:
	// рендерится отдельно и не смешивается с прогресс-баром.
	StatusCancelled Status = "cancelled"

	// StatusMixed — сентинел для заказов с несколькими продавцами;
	// фактические статусы лежат в FarmerStatuses.
	StatusMixed Status = "mixed"
)

// StatusInfo — отображаемые метаданные статуса.
type StatusInfo struct {
	Rank        int    `json:"rank"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// progressSteps — длина упорядоченной цепочки pending→delivered.
const progressSteps = 4

var statusInfos = map[Status]StatusInfo{
	StatusPending:   {Rank: 0, Label: "Ожидает подтверждения", Description: "Заказ создан и ждёт подтверждения фермером"},
	StatusConfirmed: {Rank: 1, Label: "Подтверждён", Description: "Фермер подтвердил заказ и готовит его к отправке"},
	StatusShipped:   {Rank: 2, Label: "Отправлен", Description: "Заказ передан в доставку"},
	StatusDelivered: {Rank: 3, Label: "Доставлен", Description: "Покупатель получил заказ"},
}

// OrderedStatuses — цепочка статусов в порядке возрастания ранга (без cancelled).
func OrderedStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered}
}

// LookupStatus — разбор строки статуса; false для неизвестного значения
// (возвращаемый статус при этом — pending).
func LookupStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled, StatusMixed:
		return s, true
	default:
		return StatusPending, false
	}
}

// ParseStatus — разбор строки статуса. Неизвестное или пустое значение —
// штатный fallback в pending, а не ошибка.
func ParseStatus(raw string) Status {
	s, _ := LookupStatus(raw)
	return s
}

// Rank — позиция в цепочке; false для cancelled/mixed.
func (s Status) Rank() (int, bool) {
	info, ok := statusInfos[s]
	if !ok {
		return 0, false
	}
	return info.Rank, true
}

// Progress — доля прогресс-бара (rank+1)/4. Для cancelled и неразрешимых
// значений используется ранг 0 — только для доли, стилизация остаётся своей.
func (s Status) Progress() float64 {
	rank, ok := s.Rank()
	if !ok {
		rank = 0
	}
	return float64(rank+1) / progressSteps
}

// Info — метаданные; для значений вне цепочки возвращаются метаданные pending.
func (s Status) Info() StatusInfo {
	if info, ok := statusInfos[s]; ok {
		return info
	}
	if s == StatusCancelled {
		return StatusInfo{Label: "Отменён", Description: "Заказ отменён"}
	}
	return statusInfos[StatusPending]
}

// CanTransition — допустимость перехода: только вперёд по цепочке,
// cancelled достижим из любого нетерминального статуса.
func (s Status) CanTransition(to Status) bool {
	if s == StatusCancelled || s == StatusDelivered {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromRank, fromOK := s.Rank()
	toRank, toOK := to.Rank()
	if !fromOK || !toOK {
		return false
	}
	return toRank > fromRank
}
