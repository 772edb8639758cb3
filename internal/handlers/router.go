package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/metrics"
)

func init() {
	// request bodies are an explicit schema
	binding.EnableDecoderDisallowUnknownFields = true
}

// NewRouter wires every route. staticDir holds the dashboard page.
func NewRouter(h *Handler, staticDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(), metrics.Middleware())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireSession := auth.RequireSession(h.sessions)

	api := router.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/me", requireSession, h.Me)

		api.GET("/stock", h.GetQuote)
		api.GET("/quote", h.GetQuote)

		portfolio := api.Group("/portfolio", requireSession)
		{
			portfolio.POST("/order", h.PlaceOrder)
			portfolio.GET("/positions", h.GetPositions)
			portfolio.GET("/orders", h.GetOrders)
		}
	}

	router.GET("/ws/portfolio", requireSession, h.StreamPortfolio)

	// Serve frontend
	index := filepath.Join(staticDir, "index.html")
	router.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(index)
	})

	return router
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "storage unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
