package dialect

import "github.com/qjebbs/go-sqlf/v4/dialect"

var _ Dialect = PostgreSQL{}

// PostgreSQL is the PostgreSQL dialect.
type PostgreSQL struct {
	dialect.PostgreSQL
}

// Capabilities returns the capabilities of the PostgreSQL dialect.
func (PostgreSQL) Capabilities() Capabilities {
	return Capabilities{
		SupportsCreateIfNotExists:      true,
		SupportsCreateIndexIfNotExists: true,
		SupportsDropIfExists:           true,
		SupportsLimitOffset:            true,
	}
}

// ColumnType returns the PostgreSQL column type of kind.
func (PostgreSQL) ColumnType(kind ColumnKind) string {
	switch kind {
	case KindBool:
		return "BOOLEAN"
	case KindSmallInt:
		return "SMALLINT"
	case KindInt:
		return "INTEGER"
	case KindBigInt:
		return "BIGINT"
	case KindReal:
		return "REAL"
	case KindDouble:
		return "DOUBLE PRECISION"
	case KindText:
		return "TEXT"
	case KindBlob:
		return "BYTEA"
	case KindTime:
		return "TIMESTAMP WITH TIME ZONE"
	case KindUUID:
		return "UUID"
	}
	return ""
}
