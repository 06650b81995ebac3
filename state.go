package sqlt

import (
	"fmt"
	"reflect"

	"github.com/qjebbs/go-sqlt/internal/schema"
)

type command int

const (
	cmdUnknown command = iota
	cmdSelect
	cmdCount
	cmdInsert
	cmdUpdate
	cmdDelete
)

var commandNames = [...]string{"unknown", "select", "count", "insert", "update", "delete"}

func (c command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// tableData is a table registered in a generation state.
type tableData struct {
	info  *schema.Struct
	alias string
	probe reflect.Value // *T, identifies fields by address
	join  *joinRelation
}

// joinRelation links a joined table to its parent registration.
type joinRelation struct {
	parent int
	to     *schema.Field // relation field of the parent
	on     *schema.Field // key column of the parent
	equals *schema.Field // key column of the child

	onKey, equalsKey accessor
}

type ordering struct {
	key  accessor
	desc bool
}

type limit struct {
	max, skip int
}

// genState accumulates a query and generates its statements, one per
// registered table in registration order.
type genState struct {
	config  Configuration
	command command

	tables     []*tableData
	where      Expr
	orderings  []ordering
	limit      *limit
	statements []Statement

	values  []reflect.Value // *T rows of insert, or the update value
	columns []accessor      // update columns, all non-key columns when empty
}

func newGenState(config Configuration, cmd command) *genState {
	return &genState{config: config, command: cmd}
}

// registerTable registers typ under the next alias.
func (s *genState) registerTable(typ reflect.Type, join *joinRelation) (*tableData, error) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, ErrResolution.while("registering table").becausef("cannot build a probe of %v, want a struct type", typ)
	}
	info, err := schema.Of(typ)
	if err != nil {
		return nil, ErrResolution.while("registering table").because(err)
	}
	t := &tableData{
		info:  info,
		alias: fmt.Sprintf("t%d", len(s.tables)),
		probe: reflect.New(info.Type),
		join:  join,
	}
	s.tables = append(s.tables, t)
	return t, nil
}

// addJoin registers the child table of a join. The parent is the most
// recently registered table owning to and on.
func (s *genState) addJoin(to, on, equals accessor) error {
	switch s.command {
	case cmdInsert, cmdUpdate, cmdDelete:
		return ErrSQLGen.while("adding join").becausef("join is not supported by %s", s.command)
	}
	if to == nil || on == nil || equals == nil {
		return ErrResolution.while("adding join").becausef("nil accessor")
	}
	parent := -1
	for i := len(s.tables) - 1; i >= 0; i-- {
		if s.tables[i].info.Type == to.owner() {
			parent = i
			break
		}
	}
	if parent < 0 {
		return ErrResolution.while("adding join").becausef("no registered table of %s to join from", to.owner())
	}
	p := s.tables[parent]
	toField, err := resolve(to, p.info, p.probe)
	if err != nil {
		return whileErr(err, "resolving join field")
	}
	if !toField.Relation {
		return ErrResolution.while("resolving join field").becausef("%s.%s is not a relation field", p.info.Type, toField.Name)
	}
	onField, err := resolve(on, p.info, p.probe)
	if err != nil {
		return whileErr(err, "resolving join key")
	}
	if onField.Relation {
		return ErrResolution.while("resolving join key").becausef("%s.%s is not a column", p.info.Type, onField.Name)
	}
	child, err := s.registerTable(toField.Elem, &joinRelation{
		parent:    parent,
		to:        toField,
		on:        onField,
		onKey:     on,
		equalsKey: equals,
	})
	if err != nil {
		return err
	}
	eqField, err := resolve(equals, child.info, child.probe)
	if err != nil {
		return whileErr(err, "resolving join key")
	}
	if eqField.Relation {
		return ErrResolution.while("resolving join key").becausef("%s.%s is not a column", child.info.Type, eqField.Name)
	}
	child.join.equals = eqField
	return nil
}

// setWhere combines expr with the current predicate.
func (s *genState) setWhere(expr Expr) {
	if expr == nil {
		return
	}
	if s.where == nil {
		s.where = expr
		return
	}
	if l, ok := s.where.(logical); ok && l.op == "AND" {
		exprs := make([]Expr, 0, len(l.exprs)+1)
		s.where = logical{op: "AND", exprs: append(append(exprs, l.exprs...), expr)}
		return
	}
	s.where = And(s.where, expr)
}

func (s *genState) addOrdering(key accessor, desc bool) {
	s.orderings = append(s.orderings, ordering{key: key, desc: desc})
}

func (s *genState) setLimit(max, skip int) error {
	if max < 0 || skip < 0 {
		return ErrSQLGen.while("setting limit").becausef("invalid limit %d, skip %d", max, skip)
	}
	s.limit = &limit{max: max, skip: skip}
	return nil
}

// consume returns the pending orderings and limit and clears them.
func (s *genState) consume() ([]ordering, *limit) {
	orderings, lim := s.orderings, s.limit
	s.orderings, s.limit = nil, nil
	return orderings, lim
}

func (s *genState) root() (*tableData, error) {
	if len(s.tables) == 0 {
		return nil, ErrSQLGen.becausef("no table registered")
	}
	return s.tables[0], nil
}
