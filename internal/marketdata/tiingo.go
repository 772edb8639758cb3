package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/config"
	"github.com/atharvakonge/paper-trader/internal/log"
	"github.com/atharvakonge/paper-trader/internal/metrics"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// Tiingo talks to the Tiingo end-of-day prices API.
type Tiingo struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewTiingo(cfg config.Tiingo) *Tiingo {
	return &Tiingo{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// tiingoBar is one element of the daily prices response.
type tiingoBar struct {
	Date        time.Time           `json:"date"`
	Open        decimal.Decimal     `json:"open"`
	High        decimal.Decimal     `json:"high"`
	Low         decimal.Decimal     `json:"low"`
	Close       decimal.NullDecimal `json:"close"`
	Volume      decimal.Decimal     `json:"volume"`
	AdjOpen     decimal.Decimal     `json:"adjOpen"`
	AdjHigh     decimal.Decimal     `json:"adjHigh"`
	AdjLow      decimal.Decimal     `json:"adjLow"`
	AdjClose    decimal.Decimal     `json:"adjClose"`
	AdjVolume   decimal.Decimal     `json:"adjVolume"`
	DivCash     decimal.Decimal     `json:"divCash"`
	SplitFactor decimal.Decimal     `json:"splitFactor"`
}

func (b tiingoBar) toBar(symbol string) models.Bar {
	return models.Bar{
		Symbol:      symbol,
		Date:        b.Date,
		Open:        b.Open,
		High:        b.High,
		Low:         b.Low,
		Close:       b.Close.Decimal,
		Volume:      b.Volume,
		AdjOpen:     b.AdjOpen,
		AdjHigh:     b.AdjHigh,
		AdjLow:      b.AdjLow,
		AdjClose:    b.AdjClose,
		AdjVolume:   b.AdjVolume,
		DivCash:     b.DivCash,
		SplitFactor: b.SplitFactor,
	}
}

func (t *Tiingo) History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("startDate", from.Format(dateLayout))
	params.Set("endDate", to.Format(dateLayout))

	raw, err := t.fetch(ctx, "history", symbol, params)
	if err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(raw))
	for _, b := range raw {
		if b.Date.IsZero() {
			return nil, t.fail("history", symbol, fmt.Errorf("bar without date"))
		}
		bars = append(bars, b.toBar(symbol))
	}

	metrics.QuoteRequestsTotal.WithLabelValues("history", "ok").Inc()
	return bars, nil
}

// Latest returns the close of the most recent daily bar.
func (t *Tiingo) Latest(ctx context.Context, symbol string) (models.Quote, error) {
	raw, err := t.fetch(ctx, "latest", symbol, url.Values{})
	if err != nil {
		return models.Quote{}, err
	}
	if len(raw) == 0 {
		return models.Quote{}, t.fail("latest", symbol, fmt.Errorf("no bars returned"))
	}

	last := raw[len(raw)-1]
	if !last.Close.Valid || !last.Close.Decimal.IsPositive() {
		return models.Quote{}, t.fail("latest", symbol, fmt.Errorf("missing or non-positive close"))
	}

	metrics.QuoteRequestsTotal.WithLabelValues("latest", "ok").Inc()
	return models.Quote{Symbol: symbol, Price: last.Close.Decimal, AsOf: last.Date}, nil
}

func (t *Tiingo) fetch(ctx context.Context, mode, symbol string, params url.Values) ([]tiingoBar, error) {
	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices", t.baseURL, url.PathEscape(strings.ToLower(symbol)))
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, t.fail(mode, symbol, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, t.fail(mode, symbol, fmt.Errorf("fetch prices: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, t.fail(mode, symbol, fmt.Errorf("tiingo returned status %d", resp.StatusCode))
	}

	var bars []tiingoBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, t.fail(mode, symbol, fmt.Errorf("parse prices: %w", err))
	}
	return bars, nil
}

func (t *Tiingo) fail(mode, symbol string, err error) error {
	metrics.QuoteRequestsTotal.WithLabelValues(mode, "error").Inc()
	log.Warn("market data request failed",
		zap.String("mode", mode),
		zap.String("symbol", symbol),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", apperrs.ErrQuoteUnavailable, err)
}
