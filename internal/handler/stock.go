package handler

import (
	"net/http"

	"inventapro/internal/dto"
	"inventapro/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Movements godoc
// @Summary      Stock movement ledger
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        product_id    query  string  false  "Product ID"
// @Param        warehouse_id  query  string  false  "Warehouse ID"
// @Param        type          query  string  false  "Movement type"
// @Param        page          query  int     false  "Page"
// @Param        limit         query  int     false  "Page size"
// @Success      200  {object} dto.StockMovementListResponse
// @Router       /v1/stock/movements [get]
func (h *StockHandler) Movements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
