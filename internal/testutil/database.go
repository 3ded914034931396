package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/database"
)

// SetupTestDB creates a migrated SQLite database in the test's temp dir.
// The database is closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}
