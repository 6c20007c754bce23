package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	var err error
	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}
	defer testPool.Close()

	if err := applySchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// applySchema runs the init migration so the suite can start from an
// empty database. The migration is idempotent.
func applySchema(ctx context.Context) error {
	ddl, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		return err
	}
	_, err = testPool.Exec(ctx, string(ddl))
	return err
}

// cleanupTable wipes the given tables, or all of them when called with none.
func cleanupTable(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		tables = allTables
	}
	for _, table := range tables {
		if _, err := testPool.Exec(context.Background(), "DELETE FROM "+table); err != nil {
			t.Fatalf("cleanup %s: %v", table, err)
		}
	}
}

// Deletion order respects foreign keys.
var allTables = []string{
	"order_items", "orders", "cart_items", "carts",
	"product_reviews", "products", "submissions", "users",
}
