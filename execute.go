package sqlt

import (
	"context"
	"io"
	"reflect"
)

// open obtains a bound execution delegate for st.
func (db *DB) open(ctx context.Context, dbg *debugger, index int, st Statement) (ExeDelegate, error) {
	dbg.onQuery(ctx, index, st)
	d, err := db.config.ExeDelegate(ctx, st.SQL)
	if err != nil {
		return nil, ErrExecution.while("preparing statement").because(err)
	}
	if d == nil {
		return nil, ErrExecution.while("preparing statement").becausef("configuration returned a nil execution delegate")
	}
	if err := d.Bind(st.Bindings, 0); err != nil {
		closeDelegate(d)
		return nil, ErrExecution.while("binding parameters").because(err)
	}
	return d, nil
}

func closeDelegate(d ExeDelegate) error {
	if c, ok := d.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// drain reads every remaining row of d and closes it.
func drain(d ExeDelegate) ([]Row, error) {
	defer closeDelegate(d)
	var rows []Row
	for {
		ok, err := d.HasNext()
		if err != nil {
			return nil, ErrExecution.while("reading rows").because(err)
		}
		if !ok {
			return rows, nil
		}
		row, err := d.Next()
		if err != nil {
			return nil, ErrExecution.while("reading rows").because(err)
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// exec runs a statement returning no rows. The affected row count is -1
// when the delegate cannot report it.
func (db *DB) exec(ctx context.Context, dbg *debugger, index int, st Statement) (int64, error) {
	d, err := db.open(ctx, dbg, index, st)
	if err != nil {
		return 0, err
	}
	if e, ok := d.(ResultExecer); ok {
		defer closeDelegate(d)
		n, err := e.Exec()
		if err != nil {
			return 0, ErrExecution.while("executing statement").because(err)
		}
		return n, nil
	}
	if _, err := drain(d); err != nil {
		return 0, err
	}
	return -1, nil
}

// query runs a statement and reads all of its rows.
func (db *DB) query(ctx context.Context, dbg *debugger, st Statement) ([]Row, error) {
	d, err := db.open(ctx, dbg, 0, st)
	if err != nil {
		return nil, err
	}
	return drain(d)
}

// execute runs the generated statements of s. The root statement becomes
// the master of the returned cursor, while every join statement is
// drained and decoded before the first master row is read.
func execute[T any](ctx context.Context, db *DB, s *genState, dbg *debugger) (*Cursor[T], error) {
	if len(s.statements) == 0 {
		return nil, ErrExecution.while("executing query").becausef("no statement to execute")
	}
	if len(s.statements) != len(s.tables) {
		return nil, ErrExecution.while("executing query").becausef(
			"statement count %d differs from table count %d", len(s.statements), len(s.tables),
		)
	}
	asm := &assembler{
		root:  s.tables[0],
		joins: make([]*materialized, len(s.tables)),
	}
	master, err := db.open(ctx, dbg, 0, s.statements[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(s.tables); i++ {
		m, err := materialize(ctx, db, dbg, s, i)
		if err != nil {
			closeDelegate(master)
			return nil, err
		}
		asm.joins[i] = m
	}
	asm.attachNested()
	return &Cursor[T]{
		ctx:    ctx,
		master: master,
		asm:    asm,
		dbg:    dbg,
	}, nil
}

// materialize drains the statement of join table i into decoded records.
func materialize(ctx context.Context, db *DB, dbg *debugger, s *genState, i int) (*materialized, error) {
	t := s.tables[i]
	parent := s.tables[t.join.parent]
	on, err := resolve(t.join.onKey, parent.info, parent.probe)
	if err != nil {
		return nil, ErrExecution.while("resolving join key").because(err)
	}
	equals, err := resolve(t.join.equalsKey, t.info, t.probe)
	if err != nil {
		return nil, ErrExecution.while("resolving join key").because(err)
	}
	d, err := db.open(ctx, dbg, i, s.statements[i])
	if err != nil {
		return nil, err
	}
	rows, err := drain(d)
	if err != nil {
		return nil, err
	}
	m := &materialized{
		parent: t.join.parent,
		to:     t.join.to,
		on:     on,
		equals: equals,
	}
	for _, row := range rows {
		rec := reflect.New(t.info.Type)
		if err := decodeRow(row, t.info, rec); err != nil {
			return nil, err
		}
		m.records = append(m.records, rec)
	}
	m.buildIndex()
	return m, nil
}
