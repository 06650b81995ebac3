// Package dialect provides the SQL generation delegates of sqlt for the
// dialects of github.com/qjebbs/go-sqlf/v4.
package dialect

import (
	"github.com/pkg/errors"
	"github.com/qjebbs/go-sqlf/v4/dialect"
)

// ErrUnsupported is returned by Upgrade for dialects sqlt cannot render.
var ErrUnsupported = errors.New("unsupported dialect")

// Dialect extends dialect.Dialect with what sqlt needs to render
// statements and table definitions.
type Dialect interface {
	dialect.Dialect

	// Capabilities returns the SQL capabilities of the dialect.
	Capabilities() Capabilities

	// ColumnType returns the column type of the given kind.
	ColumnType(kind ColumnKind) string
}

// Capabilities represents the SQL capabilities of a dialect.
type Capabilities struct {
	// SupportsCreateIfNotExists indicates whether the dialect supports
	// CREATE TABLE IF NOT EXISTS.
	SupportsCreateIfNotExists bool
	// SupportsCreateIndexIfNotExists indicates whether the dialect supports
	// CREATE INDEX IF NOT EXISTS.
	SupportsCreateIndexIfNotExists bool
	// SupportsDropIfExists indicates whether the dialect supports
	// DROP TABLE IF EXISTS.
	SupportsDropIfExists bool

	// SupportsLimitOffset indicates whether the dialect supports
	// "LIMIT n OFFSET m". Otherwise rows are limited with
	// "OFFSET m ROWS FETCH NEXT n ROWS ONLY".
	SupportsLimitOffset bool
	// UnboundedLimit is the LIMIT value meaning "no maximum", for dialects
	// that cannot have OFFSET without LIMIT. Empty if OFFSET stands alone.
	UnboundedLimit string
}

// Upgrade wraps a go-sqlf dialect into its sqlt counterpart. The bind
// variable style and identifier quote of d are kept. A nil d yields
// PostgreSQL, and a d that is already a Dialect is returned as is.
func Upgrade(d dialect.Dialect) (Dialect, error) {
	switch base := d.(type) {
	case nil:
		return PostgreSQL{}, nil
	case Dialect:
		return base, nil
	case dialect.PostgreSQL:
		return PostgreSQL{base}, nil
	case dialect.SQLite:
		return SQLite{base}, nil
	case dialect.MySQL:
		return MySQL{base}, nil
	case dialect.SQLServer:
		return SQLServer{base}, nil
	case dialect.Oracle:
		return Oracle{base}, nil
	case dialect.AnsiSQL:
		return AnsiSQL{base}, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "%T", d)
}

// Base returns the go-sqlf dialect of a name with the bind variable
// style, see ByName for the names. BindVarStyleDefault keeps the
// dialect's own style.
func Base(name string, style dialect.BindVarStyle) (dialect.Dialect, bool) {
	switch name {
	case "postgres", "postgresql", "pq":
		return dialect.PostgreSQL{BindVar: style}, true
	case "sqlite", "sqlite3":
		return dialect.SQLite{BindVar: style}, true
	case "mysql":
		return dialect.MySQL{BindVar: style}, true
	case "sqlserver", "mssql":
		return dialect.SQLServer{BindVar: style}, true
	case "oracle":
		return dialect.Oracle{BindVar: style}, true
	case "ansi":
		return dialect.AnsiSQL{BindVar: style}, true
	}
	return nil, false
}

// ByName returns the dialect of a name: "postgres", "sqlite", "mysql",
// "sqlserver", "oracle" or "ansi".
func ByName(name string) (Dialect, bool) {
	base, ok := Base(name, dialect.BindVarStyleDefault)
	if !ok {
		return nil, false
	}
	d, err := Upgrade(base)
	return d, err == nil
}
