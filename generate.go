package sqlt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/qjebbs/go-sqlt/internal/schema"
)

// renderer renders one statement through a fresh generation delegate.
type renderer struct {
	g       GenDelegate
	qualify bool // qualify columns with table aliases
}

func (s *genState) newRenderer(qualify bool) (*renderer, error) {
	g := s.config.GenDelegate()
	if g == nil {
		return nil, ErrSQLGen.becausef("configuration returned a nil generation delegate")
	}
	return &renderer{g: g, qualify: qualify}, nil
}

func (r *renderer) quote(name string) (string, error) {
	q, err := r.g.Quote(name)
	if err != nil {
		return "", ErrSQLGen.while("quoting identifier").because(err)
	}
	return q, nil
}

func (r *renderer) bind(value any) (string, error) {
	b, err := r.g.Binding(value)
	if err != nil {
		return "", ErrSQLGen.while("binding parameter").because(err)
	}
	return b, nil
}

func (r *renderer) column(t *tableData, column string) (string, error) {
	c, err := r.quote(column)
	if err != nil || !r.qualify {
		return c, err
	}
	a, err := r.quote(t.alias)
	if err != nil {
		return "", err
	}
	return a + "." + c, nil
}

// table renders `"Name" AS "alias"`, or the bare name when unqualified.
func (r *renderer) table(t *tableData) (string, error) {
	name, err := r.quote(t.info.Table)
	if err != nil || !r.qualify {
		return name, err
	}
	a, err := r.quote(t.alias)
	if err != nil {
		return "", err
	}
	return name + " AS " + a, nil
}

func (r *renderer) selectList(t *tableData) (string, error) {
	cols := make([]string, 0, len(t.info.Columns))
	for _, f := range t.info.Columns {
		c, err := r.column(t, f.Column)
		if err != nil {
			return "", err
		}
		cols = append(cols, c)
	}
	return strings.Join(cols, ", "), nil
}

// field resolves a predicate or ordering accessor against the root table.
func (r *renderer) field(t *tableData, a accessor) (string, error) {
	if a == nil {
		return "", ErrResolution.becausef("nil accessor")
	}
	if a.owner() != t.info.Type {
		return "", ErrSQLGen.becausef("%s is not the root table %s", a.owner(), t.info.Type)
	}
	f, err := resolve(a, t.info, t.probe)
	if err != nil {
		return "", err
	}
	if f.Relation {
		return "", ErrSQLGen.becausef("relation field %s.%s cannot be used as a column", t.info.Type, f.Name)
	}
	return r.column(t, f.Column)
}

func (r *renderer) expr(t *tableData, e Expr, nested bool) (string, error) {
	switch e := e.(type) {
	case comparison:
		col, err := r.field(t, e.field)
		if err != nil {
			return "", err
		}
		b, err := r.bind(e.value)
		if err != nil {
			return "", err
		}
		return col + " " + e.op + " " + b, nil
	case inList:
		col, err := r.field(t, e.field)
		if err != nil {
			return "", err
		}
		if len(e.values) == 0 {
			if e.not {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		}
		binds := make([]string, len(e.values))
		for i, v := range e.values {
			if binds[i], err = r.bind(v); err != nil {
				return "", err
			}
		}
		op := " IN ("
		if e.not {
			op = " NOT IN ("
		}
		return col + op + strings.Join(binds, ", ") + ")", nil
	case nullCheck:
		col, err := r.field(t, e.field)
		if err != nil {
			return "", err
		}
		if e.not {
			return col + " IS NOT NULL", nil
		}
		return col + " IS NULL", nil
	case logical:
		switch len(e.exprs) {
		case 0:
			if e.op == "AND" {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		case 1:
			return r.expr(t, e.exprs[0], nested)
		}
		parts := make([]string, len(e.exprs))
		for i, sub := range e.exprs {
			p, err := r.expr(t, sub, true)
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		s := strings.Join(parts, " "+e.op+" ")
		if nested {
			s = "(" + s + ")"
		}
		return s, nil
	case negation:
		inner, err := r.expr(t, e.expr, false)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case nil:
		return "", ErrSQLGen.becausef("nil expression")
	default:
		return "", ErrSQLGen.becausef("unsupported expression %T", e)
	}
}

func (r *renderer) where(t *tableData, e Expr) (string, error) {
	if e == nil {
		return "", nil
	}
	w, err := r.expr(t, e, false)
	if err != nil {
		return "", err
	}
	return " WHERE " + w, nil
}

func (r *renderer) orderBy(t *tableData, orderings []ordering) (string, error) {
	if len(orderings) == 0 {
		return "", nil
	}
	items := make([]string, len(orderings))
	for i, o := range orderings {
		col, err := r.field(t, o.key)
		if err != nil {
			return "", err
		}
		if o.desc {
			col += " DESC"
		}
		items[i] = col
	}
	return " ORDER BY " + strings.Join(items, ", "), nil
}

func (r *renderer) limit(l *limit) (string, error) {
	if l == nil {
		return "", nil
	}
	if lr, ok := r.g.(LimitRenderer); ok {
		s, err := lr.LimitSQL(l.max, l.skip)
		if err != nil {
			return "", ErrSQLGen.while("rendering limit").because(err)
		}
		if s == "" {
			return "", nil
		}
		return " " + s, nil
	}
	var s string
	if l.max > 0 {
		s = fmt.Sprintf(" LIMIT %d", l.max)
	}
	if l.skip > 0 {
		s += fmt.Sprintf(" OFFSET %d", l.skip)
	}
	return s, nil
}

func (r *renderer) statement(sql string) Statement {
	return Statement{SQL: sql, Bindings: r.g.Bindings()}
}

// generate produces one select statement per registered table.
func (s *genState) generate() ([]Statement, error) {
	if s.command != cmdSelect {
		return nil, ErrSQLGen.while("generating select").becausef("invalid command %s", s.command)
	}
	if _, err := s.root(); err != nil {
		return nil, whileErr(err, "generating select")
	}
	s.statements = s.statements[:0]
	for _, t := range s.tables {
		var st Statement
		var err error
		if t.join == nil {
			st, err = s.rootSelect(t)
		} else {
			st, err = s.joinSelect(t)
		}
		if err != nil {
			return nil, whileErr(err, "generating select")
		}
		s.statements = append(s.statements, st)
	}
	if len(s.statements) != len(s.tables) {
		return nil, ErrSQLGen.while("generating select").becausef(
			"statement count %d differs from table count %d", len(s.statements), len(s.tables),
		)
	}
	return s.statements, nil
}

func (s *genState) rootSelect(t *tableData) (Statement, error) {
	r, err := s.newRenderer(true)
	if err != nil {
		return Statement{}, err
	}
	orderings, lim := s.consume()
	cols, err := r.selectList(t)
	if err != nil {
		return Statement{}, err
	}
	from, err := r.table(t)
	if err != nil {
		return Statement{}, err
	}
	w, err := r.where(t, s.where)
	if err != nil {
		return Statement{}, err
	}
	ob, err := r.orderBy(t, orderings)
	if err != nil {
		return Statement{}, err
	}
	l, err := r.limit(lim)
	if err != nil {
		return Statement{}, err
	}
	return r.statement("SELECT " + cols + " FROM " + from + w + ob + l), nil
}

func (s *genState) joinSelect(t *tableData) (Statement, error) {
	r, err := s.newRenderer(true)
	if err != nil {
		return Statement{}, err
	}
	cols, err := r.selectList(t)
	if err != nil {
		return Statement{}, err
	}
	from, err := r.table(t)
	if err != nil {
		return Statement{}, err
	}
	cond, err := s.joinCondition(r, t)
	if err != nil {
		return Statement{}, err
	}
	return r.statement("SELECT " + cols + " FROM " + from + " WHERE " + cond), nil
}

// joinCondition restricts a joined table to the children of the rows its
// parent statement selects.
func (s *genState) joinCondition(r *renderer, t *tableData) (string, error) {
	eq, err := r.column(t, t.join.equals.Column)
	if err != nil {
		return "", err
	}
	sub, err := s.keySubquery(r, t.join.parent, t.join.on.Column)
	if err != nil {
		return "", err
	}
	return eq + " IN (" + sub + ")", nil
}

// keySubquery selects the column of the rows of table index that the
// query reaches, following join conditions up to the root predicate.
func (s *genState) keySubquery(r *renderer, index int, column string) (string, error) {
	p := s.tables[index]
	col, err := r.column(p, column)
	if err != nil {
		return "", err
	}
	from, err := r.table(p)
	if err != nil {
		return "", err
	}
	sql := "SELECT " + col + " FROM " + from
	if p.join == nil {
		w, err := r.where(p, s.where)
		if err != nil {
			return "", err
		}
		return sql + w, nil
	}
	cond, err := s.joinCondition(r, p)
	if err != nil {
		return "", err
	}
	return sql + " WHERE " + cond, nil
}

// count produces the single statement counting the root rows.
func (s *genState) count() (Statement, error) {
	t, err := s.root()
	if err != nil {
		return Statement{}, whileErr(err, "generating count")
	}
	if len(s.tables) > 1 {
		return Statement{}, ErrSQLGen.while("generating count").becausef("too many statements for count")
	}
	if orderings, lim := s.consume(); len(orderings) > 0 || lim != nil {
		return Statement{}, ErrSQLGen.while("generating count").becausef("ordering and limit are not supported by count")
	}
	r, err := s.newRenderer(true)
	if err != nil {
		return Statement{}, err
	}
	alias, err := r.quote("count")
	if err != nil {
		return Statement{}, whileErr(err, "generating count")
	}
	from, err := r.table(t)
	if err != nil {
		return Statement{}, whileErr(err, "generating count")
	}
	w, err := r.where(t, s.where)
	if err != nil {
		return Statement{}, whileErr(err, "generating count")
	}
	st := r.statement("SELECT COUNT(*) AS " + alias + " FROM " + from + w)
	s.statements = []Statement{st}
	return st, nil
}

// checkWrite rejects combinators that a write command cannot carry.
func (s *genState) checkWrite() (*tableData, error) {
	t, err := s.root()
	if err != nil {
		return nil, err
	}
	if len(s.tables) > 1 {
		return nil, ErrSQLGen.becausef("join is not supported by %s", s.command)
	}
	if orderings, lim := s.consume(); len(orderings) > 0 || lim != nil {
		return nil, ErrSQLGen.becausef("ordering and limit are not supported by %s", s.command)
	}
	return t, nil
}

func (s *genState) deleteSQL() (Statement, error) {
	t, err := s.checkWrite()
	if err != nil {
		return Statement{}, whileErr(err, "generating delete")
	}
	r, err := s.newRenderer(false)
	if err != nil {
		return Statement{}, err
	}
	name, err := r.table(t)
	if err != nil {
		return Statement{}, whileErr(err, "generating delete")
	}
	w, err := r.where(t, s.where)
	if err != nil {
		return Statement{}, whileErr(err, "generating delete")
	}
	st := r.statement("DELETE FROM " + name + w)
	s.statements = []Statement{st}
	return st, nil
}

func (s *genState) updateSQL() (Statement, error) {
	t, err := s.checkWrite()
	if err != nil {
		return Statement{}, whileErr(err, "generating update")
	}
	if len(s.values) != 1 {
		return Statement{}, ErrSQLGen.while("generating update").becausef("expected one value, got %d", len(s.values))
	}
	fields, err := s.updateColumns(t)
	if err != nil {
		return Statement{}, whileErr(err, "generating update")
	}
	r, err := s.newRenderer(false)
	if err != nil {
		return Statement{}, err
	}
	name, err := r.table(t)
	if err != nil {
		return Statement{}, whileErr(err, "generating update")
	}
	value := s.values[0].Elem()
	sets := make([]string, len(fields))
	for i, f := range fields {
		col, err := r.column(t, f.Column)
		if err != nil {
			return Statement{}, whileErr(err, "generating update")
		}
		b, err := r.bind(value.FieldByIndex(f.Index).Interface())
		if err != nil {
			return Statement{}, whileErr(err, "generating update")
		}
		sets[i] = col + " = " + b
	}
	w, err := r.where(t, s.where)
	if err != nil {
		return Statement{}, whileErr(err, "generating update")
	}
	st := r.statement("UPDATE " + name + " SET " + strings.Join(sets, ", ") + w)
	s.statements = []Statement{st}
	return st, nil
}

func (s *genState) updateColumns(t *tableData) ([]*schema.Field, error) {
	var fields []*schema.Field
	if len(s.columns) == 0 {
		for _, f := range t.info.Columns {
			if !f.PK {
				fields = append(fields, f)
			}
		}
	}
	for _, a := range s.columns {
		if a == nil || a.owner() != t.info.Type {
			return nil, ErrResolution.becausef("update column is not a field of %s", t.info.Type)
		}
		f, err := resolve(a, t.info, t.probe)
		if err != nil {
			return nil, err
		}
		if f.Relation {
			return nil, ErrSQLGen.becausef("relation field %s.%s cannot be updated", t.info.Type, f.Name)
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, ErrSQLGen.becausef("no column to update")
	}
	return fields, nil
}

func (s *genState) insertSQL() (Statement, error) {
	t, err := s.checkWrite()
	if err != nil {
		return Statement{}, whileErr(err, "generating insert")
	}
	if s.where != nil {
		return Statement{}, ErrSQLGen.while("generating insert").becausef("where is not supported by insert")
	}
	if len(s.values) == 0 {
		return Statement{}, ErrSQLGen.while("generating insert").becausef("nothing to insert")
	}
	r, err := s.newRenderer(false)
	if err != nil {
		return Statement{}, err
	}
	name, err := r.table(t)
	if err != nil {
		return Statement{}, whileErr(err, "generating insert")
	}
	cols, err := r.selectList(t)
	if err != nil {
		return Statement{}, whileErr(err, "generating insert")
	}
	rows := make([]string, len(s.values))
	for i, v := range s.values {
		row, err := r.valueList(t.info, v.Elem())
		if err != nil {
			return Statement{}, whileErr(err, "generating insert")
		}
		rows[i] = row
	}
	st := r.statement("INSERT INTO " + name + " (" + cols + ") VALUES " + strings.Join(rows, ", "))
	s.statements = []Statement{st}
	return st, nil
}

func (r *renderer) valueList(info *schema.Struct, v reflect.Value) (string, error) {
	binds := make([]string, len(info.Columns))
	for i, f := range info.Columns {
		b, err := r.bind(v.FieldByIndex(f.Index).Interface())
		if err != nil {
			return "", err
		}
		binds[i] = b
	}
	return "(" + strings.Join(binds, ", ") + ")", nil
}
