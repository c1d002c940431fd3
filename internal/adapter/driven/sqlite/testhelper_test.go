package sqlite

import (
	"context"
	"net/url"
	"testing"
)

// setupTestDB opens a migrated shared in-memory database named after the
// test. WAL does not apply to memory databases, so only connPragmas are set.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// The escaped test name keeps subtest slashes out of the URI query.
	dsn := buildDSN(url.PathEscape(t.Name()), "mode=memory&cache=shared", connPragmas)

	db, err := openDual(context.Background(), dsn, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
