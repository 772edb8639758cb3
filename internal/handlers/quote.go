package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/paper-trader/internal/marketdata"
)

// GetQuote handles GET /api/stock?ticker=SYM[&date=YYYY-MM-DD][&mode=latest]
func (h *Handler) GetQuote(c *gin.Context) {
	q, err := marketdata.ParseQuery(c.Query("ticker"), c.Query("date"), c.Query("mode"), h.now(), h.historyWindow)
	if err != nil {
		writeError(c, err)
		return
	}

	if q.Latest {
		quote, err := h.market.Latest(c.Request.Context(), q.Symbol)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
		return
	}

	bars, err := h.market.History(c.Request.Context(), q.Symbol, q.From, q.To)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bars)
}
