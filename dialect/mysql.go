package dialect

import "github.com/qjebbs/go-sqlf/v4/dialect"

var _ Dialect = MySQL{}

// MySQL is the MySQL dialect.
type MySQL struct {
	dialect.MySQL
}

// Capabilities returns the capabilities of the MySQL dialect.
func (MySQL) Capabilities() Capabilities {
	return Capabilities{
		SupportsCreateIfNotExists:      true,
		SupportsCreateIndexIfNotExists: false,
		SupportsDropIfExists:           true,
		SupportsLimitOffset:            true,
		UnboundedLimit:                 "18446744073709551615",
	}
}

// ColumnType returns the MySQL column type of kind. Text is bounded so
// that it can be a key.
func (MySQL) ColumnType(kind ColumnKind) string {
	switch kind {
	case KindBool:
		return "BOOLEAN"
	case KindSmallInt:
		return "SMALLINT"
	case KindInt:
		return "INT"
	case KindBigInt:
		return "BIGINT"
	case KindReal:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	case KindText:
		return "VARCHAR(255)"
	case KindBlob:
		return "BLOB"
	case KindTime:
		return "DATETIME(6)"
	case KindUUID:
		return "CHAR(36)"
	}
	return ""
}
