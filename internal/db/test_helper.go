package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/atharvakonge/paper-trader/internal/models"
)

// TestDatabaseEnv names the DSN used by integration tests.
const TestDatabaseEnv = "TEST_DATABASE_URL"

// SetupTestDB connects to the integration database and migrates it.
// The test is skipped when TEST_DATABASE_URL is not set.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := os.Getenv(TestDatabaseEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", TestDatabaseEnv)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err = db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	if err = Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		CleanupTestDB(t, db)
		db.Close()
	})

	return db
}

// CleanupTestDB removes all test data.
func CleanupTestDB(t testing.TB, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec("TRUNCATE orders, positions, users RESTART IDENTITY CASCADE"); err != nil {
		t.Logf("Warning: failed to cleanup tables: %v", err)
	}
}

// CreateTestUser creates a user with a unique username and returns its ID.
func CreateTestUser(t testing.TB, store Store, username string) int64 {
	t.Helper()

	unique := fmt.Sprintf("%s_%d", username, time.Now().UnixNano())
	u := &models.User{
		Email:        unique + "@test.com",
		Username:     unique,
		PasswordHash: "not-a-real-hash",
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u.ID
}
