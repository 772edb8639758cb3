package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type Mode string

const (
	ModeLimit  Mode = "limit"
	ModeMarket Mode = "market"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Position is a user's holding in one symbol. A closed position keeps its row with Qty 0.
type Position struct {
	UserID      int64           `json:"-"`
	Symbol      string          `json:"symbol"`
	Qty         decimal.Decimal `json:"qty"`
	AvgCost     decimal.Decimal `json:"avgCost"`
	RealizedPnL decimal.Decimal `json:"realizedPnL"`
	LastTradeTs Timestamp       `json:"lastTradeTs"`
}

// Order is an executed, immutable order record.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"-"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt Timestamp       `json:"ts"`
}

// OrderRequest is the body of POST /api/portfolio/order.
// Qty and Price accept JSON numbers or numeric strings.
type OrderRequest struct {
	Symbol string              `json:"symbol"`
	Side   string              `json:"side"`
	Qty    decimal.NullDecimal `json:"qty"`
	Price  decimal.NullDecimal `json:"price"`
	Mode   string              `json:"mode"`
}

// OrderResult is returned after a committed order.
type OrderResult struct {
	OK       bool     `json:"ok"`
	Order    Order    `json:"order"`
	Position Position `json:"position"`
}

type PositionsResponse struct {
	Positions []Position `json:"positions"`
}

type OrdersResponse struct {
	Orders []Order `json:"orders"`
}
