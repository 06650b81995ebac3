package sqlt

import (
	"context"
	"reflect"
)

// Statements generates the select statements of q without running them,
// one per table in registration order.
func (q Query[T]) Statements() ([]Statement, error) {
	s, err := q.state(cmdSelect)
	if err != nil {
		return nil, err
	}
	return s.generate()
}

// Select runs q and returns a cursor over the root rows.
func (q Query[T]) Select(ctx context.Context) (*Cursor[T], error) {
	s, err := q.state(cmdSelect)
	if err != nil {
		return nil, err
	}
	if _, err := s.generate(); err != nil {
		return nil, err
	}
	dbg := q.db.newDebugger("select")
	c, err := execute[T](ctx, q.db, s, dbg)
	if err != nil {
		dbg.onDone(ctx, err)
		return nil, err
	}
	return c, nil
}

// All runs q and decodes every root row.
func (q Query[T]) All(ctx context.Context) ([]T, error) {
	c, err := q.Select(ctx)
	if err != nil {
		return nil, err
	}
	return c.All()
}

// First runs q for a single row, keeping the skip of an earlier limit.
// It fails with ErrNoRows when no row matches.
func (q Query[T]) First(ctx context.Context) (T, error) {
	var zero T
	skip := 0
	for _, it := range q.items {
		if l, ok := it.(limitItem); ok {
			skip = l.skip
		}
	}
	c, err := q.Limit(1, skip).Select(ctx)
	if err != nil {
		return zero, err
	}
	defer c.Close()
	if !c.Next() {
		if err := c.Err(); err != nil {
			return zero, err
		}
		return zero, ErrNoRows.while("selecting first row")
	}
	return c.Decode()
}

// Count returns the number of root rows matching q.
func (q Query[T]) Count(ctx context.Context) (int64, error) {
	s, err := q.state(cmdCount)
	if err != nil {
		return 0, err
	}
	st, err := s.count()
	if err != nil {
		return 0, err
	}
	dbg := q.db.newDebugger("count")
	n, err := q.db.countRows(ctx, dbg, st)
	dbg.onDone(ctx, err)
	return n, err
}

func (db *DB) countRows(ctx context.Context, dbg *debugger, st Statement) (int64, error) {
	rows, err := db.query(ctx, dbg, st)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrExecution.while("counting rows").becausef("count returned no row")
	}
	value, ok := rows[0]["count"]
	if !ok {
		return 0, ErrRowDecode.while("counting rows").becausef(`column "count" is missing`)
	}
	var n int64
	if err := assign(reflect.ValueOf(&n).Elem(), value); err != nil {
		return 0, ErrRowDecode.while("counting rows").because(err)
	}
	return n, nil
}

// Delete deletes the root rows matching q and returns the number of
// affected rows, or -1 when the backend cannot report it.
func (q Query[T]) Delete(ctx context.Context) (int64, error) {
	s, err := q.state(cmdDelete)
	if err != nil {
		return 0, err
	}
	st, err := s.deleteSQL()
	if err != nil {
		return 0, err
	}
	return q.db.execOne(ctx, "delete", st)
}

// Update sets columns of the root rows matching q to those of value. With
// no columns given, every column except primary keys is set.
func (q Query[T]) Update(ctx context.Context, value T, columns ...Key[T]) (int64, error) {
	s, err := q.state(cmdUpdate)
	if err != nil {
		return 0, err
	}
	s.values = []reflect.Value{reflect.ValueOf(&value)}
	s.columns = keysOf(columns)
	st, err := s.updateSQL()
	if err != nil {
		return 0, err
	}
	return q.db.execOne(ctx, "update", st)
}

// Insert inserts values into the table of T in one statement.
func Insert[T any](ctx context.Context, db *DB, values ...T) (int64, error) {
	q := From[T](db)
	s, err := q.state(cmdInsert)
	if err != nil {
		return 0, err
	}
	for i := range values {
		s.values = append(s.values, reflect.ValueOf(&values[i]))
	}
	st, err := s.insertSQL()
	if err != nil {
		return 0, err
	}
	return db.execOne(ctx, "insert", st)
}

func (db *DB) execOne(ctx context.Context, op string, st Statement) (int64, error) {
	dbg := db.newDebugger(op)
	n, err := db.exec(ctx, dbg, 0, st)
	dbg.onDone(ctx, err)
	return n, err
}

// Create creates the table of T, and the tables of its relation fields
// unless policy has Shallow.
func Create[T any](ctx context.Context, db *DB, policy CreatePolicy) error {
	if db == nil {
		return ErrSQLGen.becausef("nil database")
	}
	ts, err := Structure[T]()
	if err != nil {
		return err
	}
	g := db.config.GenDelegate()
	if g == nil {
		return ErrSQLGen.becausef("configuration returned a nil generation delegate")
	}
	stmts, err := g.CreateTableSQL(ts, policy)
	if err != nil {
		return ErrSQLGen.while("generating create table").because(err)
	}
	return db.execDDL(ctx, "create", stmts)
}

// CreateIndex creates an index on the column of field.
func CreateIndex[T, V any](ctx context.Context, db *DB, field Field[T, V]) error {
	q := From[T](db)
	s, err := q.state(cmdUnknown)
	if err != nil {
		return err
	}
	t, err := s.root()
	if err != nil {
		return err
	}
	f, err := resolve(field, t.info, t.probe)
	if err != nil {
		return whileErr(err, "creating index")
	}
	if f.Relation {
		return ErrSQLGen.while("creating index").becausef("relation field %s.%s has no column", t.info.Type, f.Name)
	}
	g := db.config.GenDelegate()
	if g == nil {
		return ErrSQLGen.while("creating index").becausef("configuration returned a nil generation delegate")
	}
	stmts, err := g.CreateIndexSQL(t.info.Table, f.Column)
	if err != nil {
		return ErrSQLGen.while("generating create index").because(err)
	}
	return db.execDDL(ctx, "create index", stmts)
}

func (db *DB) execDDL(ctx context.Context, op string, stmts []string) error {
	dbg := db.newDebugger(op)
	for i, sql := range stmts {
		if _, err := db.exec(ctx, dbg, i, Statement{SQL: sql}); err != nil {
			dbg.onDone(ctx, err)
			return err
		}
	}
	dbg.onDone(ctx, nil)
	return nil
}
