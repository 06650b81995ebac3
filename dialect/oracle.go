package dialect

import "github.com/qjebbs/go-sqlf/v4/dialect"

var _ Dialect = Oracle{}

// Oracle is the Oracle dialect.
type Oracle struct {
	dialect.Oracle
}

// Capabilities returns the capabilities of the Oracle dialect.
func (Oracle) Capabilities() Capabilities {
	return Capabilities{
		SupportsCreateIfNotExists:      false,
		SupportsCreateIndexIfNotExists: false,
		SupportsDropIfExists:           false,
		SupportsLimitOffset:            false,
	}
}

// ColumnType returns the Oracle column type of kind.
func (Oracle) ColumnType(kind ColumnKind) string {
	switch kind {
	case KindBool:
		return "NUMBER(1)"
	case KindSmallInt:
		return "NUMBER(5)"
	case KindInt:
		return "NUMBER(10)"
	case KindBigInt:
		return "NUMBER(19)"
	case KindReal:
		return "BINARY_FLOAT"
	case KindDouble:
		return "BINARY_DOUBLE"
	case KindText:
		return "VARCHAR2(4000)"
	case KindBlob:
		return "BLOB"
	case KindTime:
		return "TIMESTAMP WITH TIME ZONE"
	case KindUUID:
		return "CHAR(36)"
	}
	return ""
}
