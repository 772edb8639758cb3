package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

const (
	maxIntegerDigits = 12
	maxScale         = 8
)

// Ticket is a validated order request. LimitPrice is only set in limit mode.
type Ticket struct {
	Symbol     string
	Side       models.Side
	Qty        decimal.Decimal
	Mode       models.Mode
	LimitPrice decimal.Decimal
}

// Validate normalizes req and checks everything that can be checked before storage is touched.
func Validate(req models.OrderRequest) (Ticket, error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return Ticket{}, apperrs.ErrMissingSymbol
	}
	symbol, ok := models.NormalizeSymbol(req.Symbol)
	if !ok {
		return Ticket{}, apperrs.ErrBadSymbol
	}

	side := models.Side(strings.ToUpper(strings.TrimSpace(req.Side)))
	if side != models.SideBuy && side != models.SideSell {
		return Ticket{}, apperrs.ErrBadSide
	}

	if !req.Qty.Valid || !req.Qty.Decimal.IsPositive() || !withinBounds(req.Qty.Decimal) {
		return Ticket{}, apperrs.ErrBadQuantity
	}

	t := Ticket{Symbol: symbol, Side: side, Qty: req.Qty.Decimal}

	switch models.Mode(strings.ToLower(strings.TrimSpace(req.Mode))) {
	case "", models.ModeLimit:
		if !req.Price.Valid || !req.Price.Decimal.IsPositive() || !withinBounds(req.Price.Decimal) {
			return Ticket{}, apperrs.ErrBadPrice
		}
		t.Mode = models.ModeLimit
		t.LimitPrice = req.Price.Decimal
	case models.ModeMarket:
		t.Mode = models.ModeMarket
	default:
		return Ticket{}, apperrs.ErrBadMode
	}

	return t, nil
}

// withinBounds caps amounts at 12 integer digits and 8 decimal places. It only
// looks at the exponent and coefficient so huge exponents are never expanded.
func withinBounds(d decimal.Decimal) bool {
	if d.Exponent() < -maxScale {
		return false
	}
	return int64(d.NumDigits())+int64(d.Exponent()) <= maxIntegerDigits
}
