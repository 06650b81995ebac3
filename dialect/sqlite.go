package dialect

import "github.com/qjebbs/go-sqlf/v4/dialect"

var _ Dialect = SQLite{}

// SQLite is the SQLite dialect.
type SQLite struct {
	dialect.SQLite
}

// Capabilities returns the capabilities of the SQLite dialect.
func (SQLite) Capabilities() Capabilities {
	return Capabilities{
		SupportsCreateIfNotExists:      true,
		SupportsCreateIndexIfNotExists: true,
		SupportsDropIfExists:           true,
		SupportsLimitOffset:            true,
		UnboundedLimit:                 "-1",
	}
}

// ColumnType returns the SQLite column type of kind. Time columns are
// declared TIMESTAMP so that drivers parse them back into time values.
func (SQLite) ColumnType(kind ColumnKind) string {
	switch kind {
	case KindBool:
		return "BOOLEAN"
	case KindSmallInt, KindInt, KindBigInt:
		return "INTEGER"
	case KindReal, KindDouble:
		return "REAL"
	case KindText, KindUUID:
		return "TEXT"
	case KindBlob:
		return "BLOB"
	case KindTime:
		return "TIMESTAMP"
	}
	return ""
}
