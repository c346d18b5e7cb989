package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"sync"

	"modernc.org/sqlite"

	"go-todo-api/internal/util"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// registerFunctions installs the SQL functions the schema and queries rely on.
// Registration is process-wide and applies to connections opened afterwards.
var registerFunctions = sync.OnceValue(func() error {
	return sqlite.RegisterDeterministicScalarFunction("casefold", 1, casefold)
})

// casefold exposes util.FoldCase to SQL. SQLite's lower() only folds ASCII.
func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return util.FoldCase(v), nil
	case []byte:
		return util.FoldCase(string(v)), nil
	default:
		return v, nil
	}
}

// OpenSQLite opens dsn with the pure-Go SQLite driver and migrates it.
// SQLite allows a single writer, so the pool is pinned to one connection.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteDB, error) {
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("register sqlite functions: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, pragma := range sqlitePragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err := Migrate(ctx, DialectSQLite, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	slog.Info("database connected", "driver", "sqlite", "dsn", dsn)
	return &SQLiteDB{Conn: conn}, nil
}
