package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// Apply returns the holding after filling qty at price on side, using weighted
// average cost accounting. It is the only place quantity and cost arithmetic happens.
//
// A buy re-weights the average cost. A sell realizes (price - avg) * qty and
// leaves the average of the remaining shares alone; selling everything resets it to 0.
// Selling more than is held fails with *apperrs.InsufficientHoldingError and pos is returned unchanged.
func Apply(pos models.Position, side models.Side, qty, price decimal.Decimal) (models.Position, error) {
	next := pos

	switch side {
	case models.SideBuy:
		next.Qty = pos.Qty.Add(qty)
		if pos.Qty.Sign() <= 0 {
			next.AvgCost = price
		} else {
			cost := pos.Qty.Mul(pos.AvgCost).Add(qty.Mul(price))
			next.AvgCost = cost.Div(next.Qty)
		}

	case models.SideSell:
		if qty.GreaterThan(pos.Qty) {
			return pos, &apperrs.InsufficientHoldingError{
				Symbol:    pos.Symbol,
				Held:      pos.Qty,
				Requested: qty,
			}
		}
		next.Qty = pos.Qty.Sub(qty)
		next.RealizedPnL = pos.RealizedPnL.Add(price.Sub(pos.AvgCost).Mul(qty))
		if next.Qty.IsZero() {
			next.AvgCost = decimal.Zero
		}

	default:
		return pos, apperrs.ErrBadSide
	}

	return next, nil
}
