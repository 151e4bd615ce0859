package handler

import (
	"net/http"

	"inventrack/internal/dto"
	"inventrack/internal/service"

	"github.com/gin-gonic/gin"
)

// InventoryHandler exposes stock movement history and low-stock alerts.
type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Movements godoc
// @Summary Stock movement history, newest first
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param product_id query string false "Product UUID"
// @Param type       query string false "inbound | outbound | adjustment"
// @Param page       query int    false "Page"
// @Param limit      query int    false "Page size"
// @Success 200 {object} dto.MovementListResponse
// @Router /v1/inventory/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alerts godoc
// @Summary Active products at or below their minimum stock level
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.StockAlertResponse
// @Router /v1/inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// SalesSummary godoc
// @Summary Totals of non-cancelled sales in a date range (default today, UTC)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to   query string false "YYYY-MM-DD"
// @Success 200 {object} dto.SalesSummaryResponse
// @Router /v1/reports/sales-summary [get]
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	var r dto.ReportRange
	if !bindQuery(c, &r) {
		return
	}
	resp, err := h.svc.SalesSummary(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProducts godoc
// @Summary Best sellers by quantity in a date range
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from  query string false "YYYY-MM-DD"
// @Param to    query string false "YYYY-MM-DD"
// @Param limit query int    false "Rows (default 10)"
// @Success 200 {array} dto.TopProductResponse
// @Router /v1/reports/top-products [get]
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var r dto.ReportRange
	if !bindQuery(c, &r) {
		return
	}
	resp, err := h.svc.TopProducts(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
