package sqldb

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/qjebbs/go-sqlt"
)

var (
	_ sqlt.ExeDelegate  = (*statement)(nil)
	_ sqlt.ResultExecer = (*statement)(nil)
)

// statement runs one query. The query is sent on the first HasNext, so
// statements opened together do not hold connections until read.
type statement struct {
	ctx   context.Context
	db    QueryAble
	query string
	args  []any

	rows    *sql.Rows
	columns []string
	pending bool
	done    bool
}

func (s *statement) Bind(bindings []any, skip int) error {
	if skip < 0 {
		return errors.Errorf("negative bind position %d", skip)
	}
	if s.rows != nil {
		return errors.New("statement already running")
	}
	if need := skip + len(bindings); need > len(s.args) {
		args := make([]any, need)
		copy(args, s.args)
		s.args = args
	}
	copy(s.args[skip:], bindings)
	return nil
}

func (s *statement) HasNext() (bool, error) {
	if s.done {
		return false, nil
	}
	if s.pending {
		return true, nil
	}
	if s.rows == nil {
		rows, err := s.db.QueryContext(s.ctx, s.query, s.args...)
		if err != nil {
			s.done = true
			return false, err
		}
		columns, err := rows.Columns()
		if err != nil {
			rows.Close()
			s.done = true
			return false, err
		}
		s.rows = rows
		s.columns = columns
	}
	if !s.rows.Next() {
		s.done = true
		err := s.rows.Err()
		if cerr := s.rows.Close(); err == nil {
			err = cerr
		}
		return false, err
	}
	s.pending = true
	return true, nil
}

func (s *statement) Next() (sqlt.Row, error) {
	ok, err := s.HasNext()
	if err != nil || !ok {
		return nil, err
	}
	s.pending = false
	values := make([]any, len(s.columns))
	dests := make([]any, len(s.columns))
	for i := range values {
		dests[i] = &values[i]
	}
	if err := s.rows.Scan(dests...); err != nil {
		return nil, err
	}
	row := make(sqlt.Row, len(s.columns))
	for i, c := range s.columns {
		row[c] = values[i]
	}
	return row, nil
}

// Exec runs the statement without reading rows.
func (s *statement) Exec() (int64, error) {
	if s.rows != nil || s.done {
		return 0, errors.New("statement already running")
	}
	s.done = true
	r, err := s.db.ExecContext(s.ctx, s.query, s.args...)
	if err != nil {
		return 0, err
	}
	n, err := r.RowsAffected()
	if err != nil {
		return -1, nil
	}
	return n, nil
}

// Close releases the rows of a running statement.
func (s *statement) Close() error {
	s.done = true
	s.pending = false
	if s.rows == nil {
		return nil
	}
	return s.rows.Close()
}
