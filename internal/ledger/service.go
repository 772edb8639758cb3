// Package ledger is the Position Ledger: it places simulated orders against a
// user's holdings and serves the read views over them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/db"
	"github.com/atharvakonge/paper-trader/internal/log"
	"github.com/atharvakonge/paper-trader/internal/metrics"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// PriceSource supplies the current price for market orders.
type PriceSource interface {
	Latest(ctx context.Context, symbol string) (models.Quote, error)
}

// Notifier is told about every committed order.
type Notifier interface {
	OrderFilled(userID int64, result models.OrderResult)
}

type Service struct {
	store        db.Store
	prices       PriceSource
	notifier     Notifier // optional
	historyLimit int
	now          func() time.Time
}

// NewService creates the ledger. notifier may be nil.
func NewService(store db.Store, prices PriceSource, notifier Notifier, historyLimit int) *Service {
	return &Service{
		store:        store,
		prices:       prices,
		notifier:     notifier,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// PlaceOrder validates req, prices it, and applies it to the user's holding in
// one transaction with the holding locked. Either both the position change and
// the order row are committed, or neither is.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, req models.OrderRequest) (res *models.OrderResult, err error) {
	start := time.Now()
	sideLabel, modeLabel := "unknown", "unknown"
	defer func() {
		metrics.OrdersTotal.WithLabelValues(sideLabel, modeLabel, outcome(err)).Inc()
		metrics.OrderDuration.WithLabelValues(modeLabel).Observe(time.Since(start).Seconds())
	}()

	ticket, err := Validate(req)
	if err != nil {
		return nil, err
	}
	sideLabel, modeLabel = string(ticket.Side), string(ticket.Mode)

	price, err := s.price(ctx, ticket)
	if err != nil {
		return nil, err
	}

	result := &models.OrderResult{OK: true}

	err = s.store.InTx(ctx, func(tx db.Tx) error {
		current, err := tx.LockPosition(ctx, userID, ticket.Symbol)
		if err != nil {
			return err
		}
		// stamped under the lock so timestamps follow commit order per holding
		now := s.now().UTC().Truncate(time.Microsecond)

		next, err := Apply(current, ticket.Side, ticket.Qty, price)
		if err != nil {
			return err
		}
		next.UserID = userID
		next.Symbol = ticket.Symbol
		next.LastTradeTs = models.NewTimestamp(now)

		if err := tx.UpsertPosition(ctx, next); err != nil {
			return err
		}

		order := models.Order{
			UserID:    userID,
			Symbol:    ticket.Symbol,
			Side:      ticket.Side,
			Qty:       ticket.Qty,
			Price:     price,
			CreatedAt: models.NewTimestamp(now),
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}

		result.Order = order
		result.Position = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("order filled",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", result.Order.ID),
		zap.String("symbol", ticket.Symbol),
		zap.String("side", string(ticket.Side)),
		zap.String("mode", string(ticket.Mode)),
		zap.Stringer("qty", ticket.Qty),
		zap.Stringer("price", price),
		zap.Stringer("position_qty", result.Position.Qty),
	)

	if s.notifier != nil {
		s.notifier.OrderFilled(userID, *result)
	}

	return result, nil
}

func (s *Service) price(ctx context.Context, t Ticket) (decimal.Decimal, error) {
	if t.Mode == models.ModeLimit {
		return t.LimitPrice, nil
	}

	q, err := s.prices.Latest(ctx, t.Symbol)
	if err != nil {
		if errors.Is(err, apperrs.ErrQuoteUnavailable) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("%w: %v", apperrs.ErrQuoteUnavailable, err)
	}
	if !q.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive latest price %s for %s", apperrs.ErrQuoteUnavailable, q.Price, t.Symbol)
	}
	return q.Price, nil
}

// Positions lists the user's holdings, closed ones included, ordered by symbol.
func (s *Service) Positions(ctx context.Context, userID int64) ([]models.Position, error) {
	positions, err := s.store.ListPositions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}

// Orders lists the user's most recent orders, newest first, capped at the configured limit.
func (s *Service) Orders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func outcome(err error) string {
	var ve *apperrs.ValidationError
	switch {
	case err == nil:
		return "filled"
	case errors.As(err, &ve), errors.Is(err, apperrs.ErrInsufficientHolding):
		return "rejected"
	case errors.Is(err, apperrs.ErrQuoteUnavailable):
		return "quote_unavailable"
	default:
		return "error"
	}
}
