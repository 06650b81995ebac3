// Package sqlt runs typed queries over tagged Go structs.
//
// Columns are declared with `sqlt` struct tags, and queries refer to them
// through field accessors checked at compile time:
//
//	type User struct {
//		ID   int    `sqlt:"col:id;pk"`
//		Name string `sqlt:"col:name"`
//		Pets []Pet  `sqlt:"rel"`
//	}
//
//	id := sqlt.F(func(u *User) *int { return &u.ID })
//	users, err := sqlt.From[User](db).Where(sqlt.Eq(id, 1)).All(ctx)
//
// Joins fill one-to-many relation fields by issuing one statement per
// table and reassembling child rows under their parents. SQL dialects and
// drivers are supplied through the Configuration interface. Package
// dialect provides generation delegates and package sqldb executes
// statements with database/sql.
package sqlt

import "context"

// Row is a result row keyed by column name.
type Row map[string]any

// Statement is a generated SQL statement with its parameter bindings.
type Statement struct {
	SQL      string
	Bindings []any
}

// Configuration supplies the delegates used to generate and execute SQL.
type Configuration interface {
	// GenDelegate returns a fresh generation delegate. It is called once
	// per generated statement.
	GenDelegate() GenDelegate
	// ExeDelegate returns an execution delegate for the SQL text.
	ExeDelegate(ctx context.Context, query string) (ExeDelegate, error)
}

// GenDelegate renders dialect specific SQL fragments for one statement.
type GenDelegate interface {
	// Quote quotes an identifier.
	Quote(identifier string) (string, error)
	// Binding records value as the next parameter and returns its
	// placeholder. It fails on unsupported value kinds.
	Binding(value any) (string, error)
	// Bindings returns the values recorded by Binding, in order.
	Bindings() []any
	// CreateTableSQL returns the statements creating the structure.
	CreateTableSQL(structure *TableStructure, policy CreatePolicy) ([]string, error)
	// CreateIndexSQL returns the statements creating an index on the column.
	CreateIndexSQL(table, column string) ([]string, error)
}

// LimitRenderer is optionally implemented by a GenDelegate whose dialect
// does not accept "LIMIT n OFFSET m".
type LimitRenderer interface {
	LimitSQL(max, skip int) (string, error)
}

// ExeDelegate executes one SQL statement and iterates its result rows.
//
// A delegate that also implements io.Closer is closed when its rows are
// drained or the owning cursor is closed.
type ExeDelegate interface {
	// Bind supplies the parameters, starting at position skip.
	Bind(bindings []any, skip int) error
	// HasNext reports whether another row is available. The statement is
	// run on the first call.
	HasNext() (bool, error)
	// Next returns the next row, or nil when exhausted.
	Next() (Row, error)
}

// ResultExecer is optionally implemented by an ExeDelegate that can run
// a statement returning no rows and report the number of affected rows.
type ResultExecer interface {
	Exec() (int64, error)
}
