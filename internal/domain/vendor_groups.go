package domain

import "strings"

// VendorGroup — проекция заказа на одного продавца: его позиции и его
// разрешённый статус. Не персистится и не кэшируется — пересчитывается
// при каждом обращении из Items + FarmerStatuses.
type VendorGroup struct {
	FarmerID    string  `json:"farmerId"`
	FarmerEmail string  `json:"farmerEmail"`
	FarmerName  string  `json:"farmerName,omitempty"`
	Items       []Item  `json:"items"`
	Status      Status  `json:"status"`
	Progress    float64 `json:"progress"`
}

// EncodeStatusKey — замена "." на "(dot)": точки зарезервированы в ключах
// бэкенд-хранилища, поэтому карта статусов могла быть записана в любой из
// двух конвенций.
func EncodeStatusKey(key string) string {
	return strings.ReplaceAll(key, ".", "(dot)")
}

// ResolveFarmerStatus — поиск статуса продавца: сначала закодированный ключ,
// затем сырой, иначе pending. Обе формы обязательны к проверке.
func ResolveFarmerStatus(statuses map[string]Status, key string) Status {
	if key == "" || len(statuses) == 0 {
		return StatusPending
	}
	if s, ok := statuses[EncodeStatusKey(key)]; ok {
		return ParseStatus(string(s))
	}
	if s, ok := statuses[key]; ok {
		return ParseStatus(string(s))
	}
	return StatusPending
}

// BuildVendorGroups — группировка позиций по продавцу в порядке первого
// появления. Ключ группировки — email продавца, при его отсутствии — ID;
// позиции без какой-либо идентичности продавца выпадают из агрегации
// (решение об их логировании — на вызывающей стороне). Чистая функция.
func BuildVendorGroups(items []Item, farmerStatuses map[string]Status) []VendorGroup {
	groups := make([]VendorGroup, 0, 2)
	index := make(map[string]int)

	for _, item := range items {
		key := item.FarmerEmail
		if key == "" {
			key = item.FarmerID
		}
		if key == "" {
			continue
		}

		pos, ok := index[key]
		if !ok {
			status := ResolveFarmerStatus(farmerStatuses, key)
			groups = append(groups, VendorGroup{
				FarmerID:    item.FarmerID,
				FarmerEmail: item.FarmerEmail,
				FarmerName:  item.FarmerName,
				Status:      status,
				Progress:    status.Progress(),
			})
			pos = len(groups) - 1
			index[key] = pos
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}

	return groups
}

// VendorGroups — группы продавцов для смешанного заказа; для заказа одного
// продавца возвращает nil (верхнеуровневого статуса достаточно).
func (o *Order) VendorGroups() []VendorGroup {
	if o == nil || !o.IsMixed() {
		return nil
	}
	return BuildVendorGroups(o.Items, o.FarmerStatuses)
}

// DistinctFarmers — ключи различных продавцов в позициях (email, иначе ID),
// в порядке первого появления.
func DistinctFarmers(items []Item) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0, 2)
	for _, item := range items {
		key := item.FarmerEmail
		if key == "" {
			key = item.FarmerID
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
