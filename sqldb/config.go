// Package sqldb executes sqlt statements with database/sql.
package sqldb

import (
	"context"

	"github.com/pkg/errors"
	sqlfdialect "github.com/qjebbs/go-sqlf/v4/dialect"

	"github.com/qjebbs/go-sqlt"
	"github.com/qjebbs/go-sqlt/dialect"
)

var _ sqlt.Configuration = (*Config)(nil)

// Config is a sqlt.Configuration running statements on a QueryAble.
type Config struct {
	db      QueryAble
	dialect dialect.Dialect
}

// NewConfig returns a Config running statements on db. d is a sqlt
// dialect or a go-sqlf one, whose bind variable style is kept:
//
//	sqldb.NewConfig(conn, sqlfdialect.SQLite{BindVar: sqlfdialect.BindVarStyleQuestionNumbered})
//
// The dialect defaults to PostgreSQL.
func NewConfig(db QueryAble, d sqlfdialect.Dialect) (*Config, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	upgraded, err := dialect.Upgrade(d)
	if err != nil {
		return nil, errors.WithMessage(ErrUnknownDialect, err.Error())
	}
	return &Config{db: db, dialect: upgraded}, nil
}

// Dialect returns the dialect of c.
func (c *Config) Dialect() dialect.Dialect {
	return c.dialect
}

// GenDelegate implements sqlt.Configuration.
func (c *Config) GenDelegate() sqlt.GenDelegate {
	return dialect.NewGenerator(c.dialect)
}

// ExeDelegate implements sqlt.Configuration.
func (c *Config) ExeDelegate(ctx context.Context, query string) (sqlt.ExeDelegate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return &statement{
		ctx:   ctx,
		db:    c.db,
		query: query,
	}, nil
}

// New returns a sqlt.DB running statements on db.
func New(db QueryAble, d sqlfdialect.Dialect, opts ...sqlt.Option) (*sqlt.DB, error) {
	c, err := NewConfig(db, d)
	if err != nil {
		return nil, err
	}
	return sqlt.New(c, opts...)
}
