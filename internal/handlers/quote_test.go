package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

func TestGetQuote_History(t *testing.T) {
	s := newTestServer(t)
	s.h.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }
	s.market.bars = []models.Bar{
		{Symbol: "AAPL", Date: time.Date(2025, 7, 30, 0, 0, 0, 0, time.UTC), Close: decimal.RequireFromString("209.05")},
		{Symbol: "AAPL", Date: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), Close: decimal.RequireFromString("207.57")},
	}

	w := s.do(t, http.MethodGet, "/api/stock?ticker=aapl&date=2025-05-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var bars []map[string]any
	decode(t, w, &bars)
	if len(bars) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(bars))
	}
	if bars[1]["close"] != 207.57 {
		t.Errorf("Expected close 207.57, got %v", bars[1]["close"])
	}
	if !s.market.lastFrom.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) ||
		!s.market.lastTo.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected range %s..%s", s.market.lastFrom, s.market.lastTo)
	}
}

func TestGetQuote_Latest(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/quote?ticker=MSFT&mode=latest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var q struct {
		Symbol string    `json:"symbol"`
		Price  float64   `json:"price"`
		AsOf   time.Time `json:"asOf"`
	}
	decode(t, w, &q)
	if q.Symbol != "MSFT" || q.Price != 123.45 || q.AsOf.IsZero() {
		t.Errorf("Unexpected quote %+v", q)
	}
}

func TestGetQuote_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"missing ticker", "/api/stock", http.StatusBadRequest},
		{"bad ticker", "/api/stock?ticker=%3Cscript%3E", http.StatusBadRequest},
		{"bad date", "/api/stock?ticker=AAPL&date=yesterday", http.StatusBadRequest},
		{"future date", "/api/stock?ticker=AAPL&date=2999-01-01", http.StatusBadRequest},
		{"bad mode", "/api/stock?ticker=AAPL&mode=intraday", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(t, http.MethodGet, tt.path, nil); w.Code != tt.code {
				t.Errorf("Expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	s.market.err = apperrs.ErrQuoteUnavailable
	w := s.do(t, http.MethodGet, "/api/stock?ticker=AAPL", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}
	if got := errorOf(t, w); got != apperrs.ErrQuoteUnavailable.Error() {
		t.Errorf("Unexpected error %q", got)
	}
}
