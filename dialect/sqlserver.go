package dialect

import "github.com/qjebbs/go-sqlf/v4/dialect"

var _ Dialect = SQLServer{}

// SQLServer is the Microsoft SQL Server dialect.
type SQLServer struct {
	dialect.SQLServer
}

// Capabilities returns the capabilities of the SQL Server dialect.
func (SQLServer) Capabilities() Capabilities {
	return Capabilities{
		SupportsCreateIfNotExists:      false,
		SupportsCreateIndexIfNotExists: false,
		SupportsDropIfExists:           true,
		SupportsLimitOffset:            false,
	}
}

// ColumnType returns the SQL Server column type of kind.
func (SQLServer) ColumnType(kind ColumnKind) string {
	switch kind {
	case KindBool:
		return "BIT"
	case KindSmallInt:
		return "SMALLINT"
	case KindInt:
		return "INT"
	case KindBigInt:
		return "BIGINT"
	case KindReal:
		return "REAL"
	case KindDouble:
		return "FLOAT"
	case KindText:
		return "NVARCHAR(255)"
	case KindBlob:
		return "VARBINARY(MAX)"
	case KindTime:
		return "DATETIMEOFFSET"
	case KindUUID:
		return "UNIQUEIDENTIFIER"
	}
	return ""
}
