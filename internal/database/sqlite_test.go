package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMigratesSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "todo.db")

	db, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Health(ctx))

	for _, table := range []string{"users", "todos", "audit_entries"} {
		var name string
		err := db.Conn.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		require.Equal(t, table, name)
	}
	db.Close()

	// Re-opening the same file must be a no-op for migrations.
	reopened, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(reopened.Close)

	var versions int
	require.NoError(t, reopened.Conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goose_db_version WHERE version_id > 0`).Scan(&versions))
	require.Equal(t, 3, versions)
}

func TestOpenSQLiteRegistersCasefold(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenSQLite(ctx, "file:"+filepath.Join(t.TempDir(), "fold.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	var folded string
	require.NoError(t, db.Conn.QueryRowContext(ctx, `SELECT casefold(?)`, "ÄPFEL École").Scan(&folded))
	require.Equal(t, "äpfel école", folded)

	var null *string
	require.NoError(t, db.Conn.QueryRowContext(ctx, `SELECT casefold(NULL)`).Scan(&null))
	require.Nil(t, null)
}

func TestMigrateRejectsUnknownDialect(t *testing.T) {
	t.Parallel()

	err := Migrate(context.Background(), Dialect("oracle"), nil)
	require.Error(t, err)
}
