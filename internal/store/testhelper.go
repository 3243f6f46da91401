package store

import (
	"adledger-server/internal/observability"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

// TestDB wraps a migrated PostgreSQL database used by integration tests
type TestDB struct {
	db    *sqlx.DB
	Store Store
}

// SetupTestDB connects to the database named by TEST_DB_* variables and applies
// migrations. The test is skipped when TEST_DB_HOST is not set.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		t.Skip("TEST_DB_HOST not set, skipping PostgreSQL integration test")
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnvOr("TEST_DB_USER", "ledger_user"),
		getEnvOr("TEST_DB_PASSWORD", "ledger_password"),
		dbHost,
		getEnvOr("TEST_DB_PORT", "5432"),
		getEnvOr("TEST_DB_NAME", "ledger_db"))

	db, err := sqlx.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	store := NewFromDB(db, observability.NewNopLogger())
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tdb := &TestDB{db: db, Store: store}
	tdb.Truncate(t)
	return tdb
}

// Truncate clears ledger tables and restores the default settings row
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{"withdrawal_requests", "referrals", "users"}
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := tdb.db.Exec(query); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	_, err := tdb.db.Exec(`
UPDATE ledger_settings
SET earnings_per_ad = 0.00035, daily_ad_limit = 250, cpm_rate = 0.35,
    total_users = 0, total_ads_watched = 0, total_earnings = 0,
    total_withdrawals = 0, active_users_24h = 0, version = 1
WHERE id = 'main'`)
	if err != nil {
		t.Fatalf("failed to reset settings: %v", err)
	}
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
