package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a transient latest price. It is never persisted.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"asOf"`
}

// Bar is one daily price bar, field names as the dashboard charts expect them.
type Bar struct {
	Symbol      string          `json:"symbol"`
	Date        time.Time       `json:"date"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      decimal.Decimal `json:"volume"`
	AdjOpen     decimal.Decimal `json:"adjOpen"`
	AdjHigh     decimal.Decimal `json:"adjHigh"`
	AdjLow      decimal.Decimal `json:"adjLow"`
	AdjClose    decimal.Decimal `json:"adjClose"`
	AdjVolume   decimal.Decimal `json:"adjVolume"`
	DivCash     decimal.Decimal `json:"divCash"`
	SplitFactor decimal.Decimal `json:"splitFactor"`
}
