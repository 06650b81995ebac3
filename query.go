package sqlt

import (
	"reflect"
)

// Query is an immutable query over the table of T.
//
// Every combinator returns a new Query and leaves the receiver unchanged,
// so a Query can be shared and extended independently.
type Query[T any] struct {
	db    *DB
	items []item
}

// item is one step of a query chain, replayed in order into a fresh
// generation state.
type item interface {
	apply(s *genState) error
}

type rootItem struct {
	typ reflect.Type
}

type joinItem struct {
	to, on, equals accessor
}

type whereItem struct {
	expr Expr
}

type orderItem struct {
	keys []accessor
	desc bool
}

type limitItem struct {
	max, skip int
}

func (it rootItem) apply(s *genState) error {
	_, err := s.registerTable(it.typ, nil)
	return err
}

func (it joinItem) apply(s *genState) error {
	return s.addJoin(it.to, it.on, it.equals)
}

func (it whereItem) apply(s *genState) error {
	s.setWhere(it.expr)
	return nil
}

func (it orderItem) apply(s *genState) error {
	for _, k := range it.keys {
		s.addOrdering(k, it.desc)
	}
	return nil
}

func (it limitItem) apply(s *genState) error {
	return s.setLimit(it.max, it.skip)
}

// From starts a query over the table of T.
func From[T any](db *DB) Query[T] {
	return Query[T]{
		db:    db,
		items: []item{rootItem{typ: reflect.TypeOf((*T)(nil)).Elem()}},
	}
}

func (q Query[T]) with(it item) Query[T] {
	items := make([]item, len(q.items), len(q.items)+1)
	copy(items, q.items)
	return Query[T]{db: q.db, items: append(items, it)}
}

// Where restricts the rows of the root table. Repeated calls are
// combined with AND.
func (q Query[T]) Where(expr Expr) Query[T] {
	return q.with(whereItem{expr: expr})
}

// OrderBy sorts root rows by keys, ascending.
func (q Query[T]) OrderBy(keys ...Key[T]) Query[T] {
	return q.with(orderItem{keys: keysOf(keys)})
}

// OrderByDesc sorts root rows by keys, descending.
func (q Query[T]) OrderByDesc(keys ...Key[T]) Query[T] {
	return q.with(orderItem{keys: keysOf(keys), desc: true})
}

// Limit returns at most max root rows after skipping skip rows. A zero
// max means no maximum. It replaces any earlier limit.
func (q Query[T]) Limit(max, skip int) Query[T] {
	return q.with(limitItem{max: max, skip: skip})
}

// Join fills the relation field to of a parent P with the rows of C whose
// equals field matches the parent's on field.
//
// P is the root type or the type of an earlier join, whose most recent
// registration becomes the parent:
//
//	q := sqlt.From[User](db)
//	q = sqlt.Join(q, userPets, userID, petOwnerID)
//	q = sqlt.Join(q, petToys, petID, toyPetID)
func Join[T, P, C any, K comparable](q Query[T], to Field[P, []C], on Field[P, K], equals Field[C, K]) Query[T] {
	return q.with(joinItem{to: to, on: on, equals: equals})
}

func keysOf[T any](keys []Key[T]) []accessor {
	out := make([]accessor, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

// state replays the chain into a fresh generation state for cmd.
func (q Query[T]) state(cmd command) (*genState, error) {
	if q.db == nil {
		return nil, ErrSQLGen.becausef("query has no database")
	}
	s := newGenState(q.db.config, cmd)
	for _, it := range q.items {
		if err := it.apply(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}
