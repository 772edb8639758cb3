// Package db owns persistence: the connection pool, migrations and the Store
// implementations (PostgreSQL as source of truth, memory for development and tests).
package db

import (
	"context"

	"github.com/atharvakonge/paper-trader/internal/models"
)

// Tx is the work available inside one order transaction.
type Tx interface {
	// LockPosition returns the current holding for (userID, symbol) and holds an
	// exclusive lock on it until the transaction ends. A missing holding reads as zero.
	LockPosition(ctx context.Context, userID int64, symbol string) (models.Position, error)

	// UpsertPosition writes the new holding state.
	UpsertPosition(ctx context.Context, p models.Position) error

	// InsertOrder appends an order and sets its ID.
	InsertOrder(ctx context.Context, o *models.Order) error
}

// Store is the persistence interface.
type Store interface {
	// InTx runs fn in one transaction. It commits when fn returns nil and rolls
	// back on any error, panic or context cancellation.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ListPositions returns the user's positions ordered by symbol.
	ListPositions(ctx context.Context, userID int64) ([]models.Position, error)

	// ListOrders returns at most limit orders, most recent first.
	ListOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error)

	// CreateUser inserts u and sets its ID. Duplicates return apperrs.ErrEmailTaken or apperrs.ErrUsernameTaken.
	CreateUser(ctx context.Context, u *models.User) error

	// GetUserByEmail returns apperrs.ErrNotFound when there is no such user.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	Ping(ctx context.Context) error
}
