package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

func TestPostgresStore_PositionRoundTrip(t *testing.T) {
	database := SetupTestDB(t)
	store := NewPostgresStore(database)
	ctx := context.Background()

	userID := CreateTestUser(t, store, "pguser")
	now := time.Now().UTC().Truncate(time.Microsecond)

	err := store.InTx(ctx, func(tx Tx) error {
		p, err := tx.LockPosition(ctx, userID, "AAPL")
		if err != nil {
			return err
		}
		if !p.Qty.IsZero() {
			t.Errorf("expected a fresh holding to read as zero, got %s", p.Qty)
		}
		p.Qty = decimal.RequireFromString("2.5")
		p.AvgCost = decimal.RequireFromString("101.25")
		p.LastTradeTs = models.NewTimestamp(now)
		if err := tx.UpsertPosition(ctx, p); err != nil {
			return err
		}
		return tx.InsertOrder(ctx, &models.Order{
			UserID: userID, Symbol: "AAPL", Side: models.SideBuy,
			Qty: p.Qty, Price: p.AvgCost, CreatedAt: models.NewTimestamp(now),
		})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	positions, err := store.ListPositions(ctx, userID)
	if err != nil {
		t.Fatalf("ListPositions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if !positions[0].Qty.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected qty 2.5, got %s", positions[0].Qty)
	}
	if !positions[0].LastTradeTs.Equal(now) {
		t.Errorf("expected last trade %s, got %s", now, positions[0].LastTradeTs.Time)
	}

	orders, err := store.ListOrders(ctx, userID, 10)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID == 0 {
		t.Fatalf("expected 1 order with an id, got %+v", orders)
	}
}

func TestPostgresStore_RollbackLeavesNoRow(t *testing.T) {
	database := SetupTestDB(t)
	store := NewPostgresStore(database)
	ctx := context.Background()

	userID := CreateTestUser(t, store, "pgrollback")

	boom := errors.New("boom")
	err := store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockPosition(ctx, userID, "TSLA"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM positions WHERE user_id = $1", userID).Scan(&count); err != nil {
		t.Fatalf("count positions: %v", err)
	}
	if count != 0 {
		t.Errorf("expected placeholder row to be rolled back, found %d rows", count)
	}
}

func TestPostgresStore_DuplicateUser(t *testing.T) {
	database := SetupTestDB(t)
	store := NewPostgresStore(database)
	ctx := context.Background()

	u := &models.User{Email: "dup@test.com", Username: "dup_user", PasswordHash: "x"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	err := store.CreateUser(ctx, &models.User{Email: "dup@test.com", Username: "another", PasswordHash: "x"})
	if !errors.Is(err, apperrs.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	err = store.CreateUser(ctx, &models.User{Email: "other@test.com", Username: "dup_user", PasswordHash: "x"})
	if !errors.Is(err, apperrs.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "dup@test.com")
	if err != nil || got.ID != u.ID {
		t.Errorf("GetUserByEmail = %+v, %v", got, err)
	}
}
