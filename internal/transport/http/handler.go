package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/export"
	"github.com/greenbasket/farmdash/internal/notify"
	"github.com/greenbasket/farmdash/internal/ports"
	"github.com/greenbasket/farmdash/internal/query"
	"github.com/greenbasket/farmdash/internal/usecase"
	"github.com/greenbasket/farmdash/pkg/httpx"
)

// Handler — HTTP-срез дашборда: отдаёт view-model поверх движка
// синхронизации, рендеринг остаётся за фронтендом.
type Handler struct {
	sync      *usecase.SyncEngine
	mutations *usecase.MutationCoordinator
	store     *usecase.OrderStore
	bus       *notify.Bus
	log       ports.Logger
}

func NewHandler(
	sync *usecase.SyncEngine,
	mutations *usecase.MutationCoordinator,
	store *usecase.OrderStore,
	bus *notify.Bus,
	log ports.Logger,
) *Handler {
	return &Handler{sync: sync, mutations: mutations, store: store, bus: bus, log: log}
}

// orderView — заказ с производными полями для отрисовки.
type orderView struct {
	*domain.Order
	Progress     float64              `json:"progress"`
	StatusInfo   domain.StatusInfo    `json:"statusInfo"`
	VendorGroups []domain.VendorGroup `json:"vendorGroups,omitempty"`
}

// listOrders — конвейер фильтр/поиск/даты/сортировка/пагинация поверх
// снимка коллекции. Состояние страницы живёт у клиента: при смене любого
// фильтра клиент обязан прислать page=1.
func (h *Handler) listOrders(c *gin.Context) {
	result := query.Apply(h.store.Snapshot(), parseQueryParams(c))

	views := make([]orderView, 0, len(result.Orders))
	for _, o := range result.Orders {
		views = append(views, orderView{
			Order:        o,
			Progress:     o.Status.Progress(),
			StatusInfo:   o.Status.Info(),
			VendorGroups: o.VendorGroups(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     views,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"total":      result.Total,
		"totalPages": result.TotalPages,
	})
}

// refreshOrders — запуск синхронизации; force=true — принудительная
// загрузка мимо кэша с видимым индикатором на клиенте.
func (h *Handler) refreshOrders(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	if err := h.sync.FetchOrders(c.Request.Context(), force); err != nil {
		// Пользователь уже уведомлён через шину — отдаём только код.
		c.JSON(http.StatusBadGateway, gin.H{"error": "orders sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": h.store.Len()})
}

type updateStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	Confirmed bool   `json:"confirmed"`
}

// updateStatus — одиночная мутация. Подтверждение пользователя приходит
// явным полем: без него мутация не выполняется.
func (h *Handler) updateStatus(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !req.Confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation required"})
		return
	}

	// Fallback в pending здесь неуместен: опечатка в целевом статусе —
	// ошибка клиента, а не повод двигать заказ в pending.
	target, known := domain.LookupStatus(req.Status)
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	err := h.mutations.UpdateStatus(c.Request.Context(), orderID, target)
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, usecase.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "order update failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type bulkStatusRequest struct {
	OrderIDs []string `json:"ids" binding:"required"`
	Status   string   `json:"status" binding:"required"`
}

// bulkStatus — массовая мутация; частичные неудачи — штатный исход,
// ответ всегда 200 с разбивкой.
func (h *Handler) bulkStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	target, known := domain.LookupStatus(req.Status)
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	result, err := h.mutations.BulkUpdateStatus(c.Request.Context(), req.OrderIDs, target)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "bulk update failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type selectionRequest struct {
	OrderIDs []string `json:"ids"`
}

// setSelection — набор выделенных заказов для экспорта и bulk-операций.
func (h *Handler) setSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.store.SetSelection(req.OrderIDs)
	c.JSON(http.StatusOK, gin.H{"selected": len(req.OrderIDs)})
}

// exportOrders — выгрузка выделенных, иначе отфильтрованных заказов в
// CSV или JSON. Пустой набор отклоняется заранее.
func (h *Handler) exportOrders(c *gin.Context) {
	orders := h.store.SelectedOrders()
	if len(orders) == 0 {
		// Экспорт игнорирует пагинацию: берём весь отфильтрованный набор.
		orders = query.Filter(h.store.Snapshot(), parseQueryParams(c))
	}

	file, err := export.Build(c.Query("format"), orders, time.Now())
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		h.bus.Push(c.Request.Context(), "Нет заказов для экспорта", domain.SeverityWarning)
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to export"})
		return
	case errors.Is(err, export.ErrUnknownFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format"})
		return
	case err != nil:
		h.log.Errorf(c.Request.Context(), "export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// listNotifications — видимое кольцо уведомлений.
func (h *Handler) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.bus.List()})
}

// parseQueryParams — входы конвейера из query-строки.
func parseQueryParams(c *gin.Context) query.Params {
	return query.Params{
		Status:  c.DefaultQuery("status", query.StatusAll),
		Search:  c.Query("q"),
		From:    httpx.ParseDate(c, "from"),
		To:      httpx.ParseDate(c, "to"),
		Sort:    query.Sort(c.DefaultQuery("sort", string(query.SortNewest))),
		Density: query.Density(c.DefaultQuery("density", string(query.DensityDetailed))),
		Page:    httpx.ParsePage(c),
	}
}
