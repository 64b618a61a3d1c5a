package integration_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"techdeputies/internal/auth"
	"techdeputies/internal/db"
	"techdeputies/internal/plan"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL, applies the migrations and
// empties every table. Tests are skipped without a database.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL is not set")
	}

	database, err := db.Connect(dsn)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database, "../migrations"))
	cleanDatabase(t, database)
	return database
}

func cleanDatabase(t *testing.T, database *sqlx.DB) {
	tables := []string{
		"bookings",
		"purchases",
		"time_slots",
		"courses",
		"gift_card_transactions",
		"gift_cards",
		"subscriptions",
		"users",
	}
	for _, table := range tables {
		_, err := database.Exec(fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err, "Failed to clean table "+table)
	}
}

func createTestUser(t *testing.T, database *sqlx.DB, email, name string) int {
	hashedPassword, err := auth.HashPassword("password123")
	require.NoError(t, err)

	var userID int
	err = database.QueryRow(`
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, 'customer')
		RETURNING id
	`, email, name, hashedPassword).Scan(&userID)
	require.NoError(t, err)
	return userID
}

func createSubscription(t *testing.T, database *sqlx.DB, userID int, tier plan.Tier, booked int) int {
	start := time.Now().Add(-24 * time.Hour)
	var id int
	err := database.QueryRow(`
		INSERT INTO subscriptions (user_id, tier, status, provider_subscription_id,
			current_period_start, current_period_end, sessions_booked_this_period)
		VALUES ($1, $2, 'active', $3, $4, $5, $6)
		RETURNING id
	`, userID, tier, fmt.Sprintf("sub_%d_%d", userID, time.Now().UnixNano()), start, start.AddDate(0, 1, 0), booked).Scan(&id)
	require.NoError(t, err)
	return id
}

func createGiftCard(t *testing.T, database *sqlx.DB, code string, cents int64) int {
	var id int
	err := database.QueryRow(`
		INSERT INTO gift_cards (code, original_cents, remaining_cents, status, purchaser_email)
		VALUES ($1, $2, $2, 'active', 'buyer@example.com')
		RETURNING id
	`, code, cents).Scan(&id)
	require.NoError(t, err)
	return id
}

func giftCardBalance(t *testing.T, database *sqlx.DB, code string) int64 {
	var remaining int64
	require.NoError(t, database.Get(&remaining, `SELECT remaining_cents FROM gift_cards WHERE code = $1`, code))
	return remaining
}

func countRows(t *testing.T, database *sqlx.DB, table string) int {
	var n int
	require.NoError(t, database.GetContext(context.Background(), &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)))
	return n
}
