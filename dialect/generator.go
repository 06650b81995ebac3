package dialect

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/qjebbs/go-sqlf/v4"
	sqlfdialect "github.com/qjebbs/go-sqlf/v4/dialect"

	"github.com/qjebbs/go-sqlt"
)

var (
	_ sqlt.GenDelegate   = (*Generator)(nil)
	_ sqlt.LimitRenderer = (*Generator)(nil)
)

// Generator renders the SQL of one statement for a dialect. It
// implements sqlt.GenDelegate.
type Generator struct {
	dialect Dialect
	ctx     sqlf.Context
}

// NewGenerator returns a Generator for d, defaulting to PostgreSQL.
func NewGenerator(d Dialect) *Generator {
	if d == nil {
		d = PostgreSQL{}
	}
	return &Generator{
		dialect: d,
		ctx:     sqlf.NewContext(context.Background(), d),
	}
}

// Dialect returns the dialect of g.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// Quote quotes an identifier.
func (g *Generator) Quote(identifier string) (string, error) {
	if identifier == "" {
		return "", errors.New("empty identifier")
	}
	return g.build(sqlf.F("?", sqlf.Identifier(identifier)))
}

// Binding records value and returns its placeholder in the bind
// variable style of the dialect. Numbered and named styles reuse the
// placeholder of a repeated value. Values the database/sql default
// converter rejects are unsupported.
func (g *Generator) Binding(value any) (string, error) {
	if _, err := driver.DefaultParameterConverter.ConvertValue(value); err != nil {
		return "", errors.Wrapf(err, "unsupported binding %T", value)
	}
	if value != nil && g.dialect.BindVarStyle() != sqlfdialect.BindVarStyleQuestion &&
		!reflect.TypeOf(value).Comparable() {
		value = &opaqueArg{value}
	}
	before := len(g.ctx.Args())
	placeholder := g.ctx.CommitArg(value)
	args := g.ctx.Args()
	if len(args) > before || len(placeholder) < 2 {
		return placeholder, nil
	}
	// named stores answer a repeated value with its bare index
	i, err := strconv.Atoi(placeholder[1:])
	if err != nil || i < 1 || i > len(args) {
		return placeholder, nil
	}
	if named, ok := args[i-1].(sql.NamedArg); ok {
		return placeholder[:1] + named.Name, nil
	}
	return placeholder, nil
}

// opaqueArg carries a value the numbered and named arg stores cannot use
// as a map key, such as []byte.
type opaqueArg struct{ v any }

// Value implements driver.Valuer.
func (a *opaqueArg) Value() (driver.Value, error) {
	return driver.DefaultParameterConverter.ConvertValue(a.v)
}

// Bindings returns the recorded values in placeholder order. Named
// styles wrap them in sql.NamedArg.
func (g *Generator) Bindings() []any {
	return g.ctx.Args()
}

// LimitSQL renders a row limit in the syntax of the dialect. A zero max
// means no maximum, and an empty string is returned when there is
// nothing to limit.
func (g *Generator) LimitSQL(max, skip int) (string, error) {
	if max < 0 || skip < 0 {
		return "", errors.Errorf("negative limit %d or skip %d", max, skip)
	}
	if max == 0 && skip == 0 {
		return "", nil
	}
	caps := g.dialect.Capabilities()
	if !caps.SupportsLimitOffset {
		if max == 0 {
			return fmt.Sprintf("OFFSET %d ROWS", skip), nil
		}
		return fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", skip, max), nil
	}
	switch {
	case max > 0 && skip > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", max, skip), nil
	case max > 0:
		return fmt.Sprintf("LIMIT %d", max), nil
	case caps.UnboundedLimit != "":
		return fmt.Sprintf("LIMIT %s OFFSET %d", caps.UnboundedLimit, skip), nil
	}
	return fmt.Sprintf("OFFSET %d", skip), nil
}

func (g *Generator) build(f *sqlf.Fragment) (string, error) {
	query, args, err := f.Build(g.ctx)
	if err != nil {
		return "", err
	}
	if len(args) > 0 {
		return "", errors.Errorf("unexpected arguments %v in %q", args, query)
	}
	return query, nil
}

// CreateTableSQL returns the statements creating the table of structure,
// its indexes and, unless policy has sqlt.Shallow, its sub tables.
func (g *Generator) CreateTableSQL(structure *sqlt.TableStructure, policy sqlt.CreatePolicy) ([]string, error) {
	if structure == nil {
		return nil, errors.New("nil table structure")
	}
	caps := g.dialect.Capabilities()
	var out []string
	if policy.Has(sqlt.DropTable) {
		format := "DROP TABLE ?"
		if caps.SupportsDropIfExists {
			format = "DROP TABLE IF EXISTS ?"
		}
		drop, err := g.build(sqlf.F(format, sqlf.Identifier(structure.Name)))
		if err != nil {
			return nil, err
		}
		out = append(out, drop)
	}
	create, err := g.createTable(structure, policy.Has(sqlt.IfNotExists))
	if err != nil {
		return nil, err
	}
	out = append(out, create)
	for _, c := range structure.Columns {
		if !c.Indexed {
			continue
		}
		index, err := g.createIndex(structure.Name, c.Name, policy.Has(sqlt.IfNotExists))
		if err != nil {
			return nil, err
		}
		out = append(out, index)
	}
	if policy.Has(sqlt.Shallow) {
		return out, nil
	}
	for _, sub := range structure.SubTables {
		stmts, err := g.CreateTableSQL(sub, policy)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func (g *Generator) createTable(structure *sqlt.TableStructure, ifNotExists bool) (string, error) {
	if len(structure.Columns) == 0 {
		return "", errors.Errorf("table %s has no column", structure.Name)
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		if !g.dialect.Capabilities().SupportsCreateIfNotExists {
			return "", errors.Errorf("dialect %T does not support CREATE TABLE IF NOT EXISTS", g.dialect)
		}
		b.WriteString("IF NOT EXISTS ")
	}
	name, err := g.Quote(structure.Name)
	if err != nil {
		return "", err
	}
	b.WriteString(name)
	b.WriteString(" (")
	var pk []string
	for i, c := range structure.Columns {
		kind, err := KindOf(c.Type)
		if err != nil {
			return "", errors.Wrapf(err, "column %s.%s", structure.Name, c.Name)
		}
		col, err := g.Quote(c.Name)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" ")
		b.WriteString(g.dialect.ColumnType(kind))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.PK {
			pk = append(pk, col)
		}
	}
	if len(pk) > 0 {
		b.WriteString(", PRIMARY KEY (")
		b.WriteString(strings.Join(pk, ", "))
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String(), nil
}

// CreateIndexSQL returns the statement creating an index on the column.
func (g *Generator) CreateIndexSQL(table, column string) ([]string, error) {
	index, err := g.createIndex(table, column, false)
	if err != nil {
		return nil, err
	}
	return []string{index}, nil
}

func (g *Generator) createIndex(table, column string, ifNotExists bool) (string, error) {
	format := "CREATE INDEX ? ON ? (?)"
	if ifNotExists && g.dialect.Capabilities().SupportsCreateIndexIfNotExists {
		format = "CREATE INDEX IF NOT EXISTS ? ON ? (?)"
	}
	return g.build(sqlf.F(format,
		sqlf.Identifier(IndexName(table, column)),
		sqlf.Identifier(table),
		sqlf.Identifier(column),
	))
}

// IndexName returns the name of the index on a column.
func IndexName(table, column string) string {
	return "idx_" + table + "_" + column
}
