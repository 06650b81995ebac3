package dialect

import "github.com/qjebbs/go-sqlf/v4/dialect"

var _ Dialect = AnsiSQL{}

// AnsiSQL is the ANSI SQL dialect.
type AnsiSQL struct {
	dialect.AnsiSQL
}

// Capabilities returns the capabilities of the ANSI SQL dialect.
func (AnsiSQL) Capabilities() Capabilities {
	return Capabilities{}
}

// ColumnType returns the ANSI SQL column type of kind.
func (AnsiSQL) ColumnType(kind ColumnKind) string {
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
		return "VARCHAR(255)"
	case KindBlob:
		return "BLOB"
	case KindTime:
		return "TIMESTAMP"
	case KindUUID:
		return "CHAR(36)"
	}
	return ""
}
