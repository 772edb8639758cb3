// Package marketdata is the Market Data Gateway: daily price history and the
// latest price for a ticker, fetched from Tiingo.
package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

const dateLayout = "2006-01-02"

// Gateway is the upstream price source. Every upstream failure is reported
// as apperrs.ErrQuoteUnavailable.
type Gateway interface {
	History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	Latest(ctx context.Context, symbol string) (models.Quote, error)
}

// Query is a parsed quote request.
type Query struct {
	Symbol string
	Latest bool
	From   time.Time
	To     time.Time
}

// ParseQuery validates the ticker, date and mode query parameters.
// Without a date the range is the window ending today; with one it runs from date to today.
func ParseQuery(ticker, date, mode string, now time.Time, window time.Duration) (Query, error) {
	symbol, ok := models.NormalizeSymbol(ticker)
	if !ok {
		return Query{}, apperrs.ErrBadTicker
	}

	q := Query{Symbol: symbol}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "":
	case "latest":
		q.Latest = true
		return q, nil
	default:
		return Query{}, apperrs.ErrBadQuoteMode
	}

	today := startOfDay(now)
	q.To = today
	q.From = startOfDay(today.Add(-window))

	if date = strings.TrimSpace(date); date != "" {
		from, err := time.Parse(dateLayout, date)
		if err != nil || from.After(today) {
			return Query{}, apperrs.ErrBadDate
		}
		q.From = from
	}

	return q, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
