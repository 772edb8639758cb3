// Package metrics provides Prometheus instrumentation for the trading API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersTotal counts order attempts by side, mode and outcome.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paper_orders_total",
		Help: "Order placement attempts",
	}, []string{"side", "mode", "result"})

	OrderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paper_order_duration_seconds",
		Help:    "Order placement latency including the quote fetch",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	// QuoteRequestsTotal counts upstream market data calls.
	QuoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paper_quote_requests_total",
		Help: "Upstream market data requests",
	}, []string{"mode", "result"})

	QuoteCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paper_quote_cache_total",
		Help: "Price history cache lookups",
	}, []string{"result"})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paper_ws_clients",
		Help: "Connected portfolio stream clients",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paper_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paper_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"method", "route"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// route template keeps label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
