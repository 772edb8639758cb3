// Package handlers is the HTTP surface: gin handlers, the router and the
// portfolio websocket stream.
package handlers

import (
	"time"

	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/db"
	"github.com/atharvakonge/paper-trader/internal/ledger"
	"github.com/atharvakonge/paper-trader/internal/marketdata"
)

type Handler struct {
	ledger        *ledger.Service
	accounts      *auth.Service
	sessions      *auth.SessionManager
	market        marketdata.Gateway
	store         db.Store
	hub           *Hub
	historyWindow time.Duration
	now           func() time.Time
}

type Deps struct {
	Ledger        *ledger.Service
	Accounts      *auth.Service
	Sessions      *auth.SessionManager
	Market        marketdata.Gateway
	Store         db.Store
	Hub           *Hub
	HistoryWindow time.Duration
}

func New(d Deps) *Handler {
	return &Handler{
		ledger:        d.Ledger,
		accounts:      d.Accounts,
		sessions:      d.Sessions,
		market:        d.Market,
		store:         d.Store,
		hub:           d.Hub,
		historyWindow: d.HistoryWindow,
		now:           time.Now,
	}
}
