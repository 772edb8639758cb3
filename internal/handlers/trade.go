package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// PlaceOrder handles POST /api/portfolio/order
func (h *Handler) PlaceOrder(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrs.ErrBadBody)
		return
	}

	result, err := h.ledger.PlaceOrder(c.Request.Context(), id.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPositions handles GET /api/portfolio/positions
func (h *Handler) GetPositions(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	positions, err := h.ledger.Positions(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PositionsResponse{Positions: positions})
}

// GetOrders handles GET /api/portfolio/orders
func (h *Handler) GetOrders(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	orders, err := h.ledger.Orders(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OrdersResponse{Orders: orders})
}
