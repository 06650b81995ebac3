package sqldb

import (
	"context"
	"database/sql"
)

// QueryAble is the interface for query-able *sql.DB, *sql.Tx, *sql.Conn, etc.
type QueryAble interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
