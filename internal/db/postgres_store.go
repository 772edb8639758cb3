package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on a database/sql pool.
// Monetary values and quantities are NUMERIC columns scanned into decimals.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) LockPosition(ctx context.Context, userID int64, symbol string) (models.Position, error) {
	// Make sure there is a row to lock. Without it two first orders on the same
	// holding would both read "no row" and the later upsert would overwrite the earlier.
	_, err := t.tx.ExecContext(ctx, `
        INSERT INTO positions (user_id, symbol)
        VALUES ($1, $2)
        ON CONFLICT (user_id, symbol) DO NOTHING
    `, userID, symbol)
	if err != nil {
		return models.Position{}, fmt.Errorf("ensure position %s: %w", symbol, err)
	}

	p := models.Position{UserID: userID, Symbol: symbol}
	err = t.tx.QueryRowContext(ctx, `
        SELECT qty, avg_cost, realized_pnl, last_trade_ts
        FROM positions
        WHERE user_id = $1 AND symbol = $2
        FOR UPDATE
    `, userID, symbol).Scan(&p.Qty, &p.AvgCost, &p.RealizedPnL, &p.LastTradeTs.Time)
	if err != nil {
		return models.Position{}, fmt.Errorf("lock position %s: %w", symbol, err)
	}

	return p, nil
}

func (t *pgTx) UpsertPosition(ctx context.Context, p models.Position) error {
	_, err := t.tx.ExecContext(ctx, `
        INSERT INTO positions (user_id, symbol, qty, avg_cost, realized_pnl, last_trade_ts)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, symbol)
        DO UPDATE SET
            qty = EXCLUDED.qty,
            avg_cost = EXCLUDED.avg_cost,
            realized_pnl = EXCLUDED.realized_pnl,
            last_trade_ts = EXCLUDED.last_trade_ts
    `, p.UserID, p.Symbol, p.Qty, p.AvgCost, p.RealizedPnL, p.LastTradeTs.Time)
	if err != nil {
		return fmt.Errorf("upsert position %s: %w", p.Symbol, err)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *models.Order) error {
	err := t.tx.QueryRowContext(ctx, `
        INSERT INTO orders (user_id, symbol, side, qty, price, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, o.UserID, o.Symbol, string(o.Side), o.Qty, o.Price, o.CreatedAt.Time).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPositions(ctx context.Context, userID int64) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT symbol, qty, avg_cost, realized_pnl, last_trade_ts
        FROM positions
        WHERE user_id = $1
        ORDER BY symbol ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]models.Position, 0)
	for rows.Next() {
		p := models.Position{UserID: userID}
		if err := rows.Scan(&p.Symbol, &p.Qty, &p.AvgCost, &p.RealizedPnL, &p.LastTradeTs.Time); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *PostgresStore) ListOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, symbol, side, qty, price, created_at
        FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o := models.Order{UserID: userID}
		var side string
		if err := rows.Scan(&o.ID, &o.Symbol, &side, &o.Qty, &o.Price, &o.CreatedAt.Time); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Side = models.Side(side)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO users (email, username, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, u.Email, u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case "users_email_key":
			return apperrs.ErrEmailTaken
		case "users_username_key":
			return apperrs.ErrUsernameTaken
		}
	}
	return fmt.Errorf("insert user: %w", err)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, email, username, password_hash, created_at FROM users WHERE email = $1", email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, email, username, password_hash, created_at FROM users WHERE id = $1", id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
