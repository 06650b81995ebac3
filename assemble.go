package sqlt

import (
	"database/sql/driver"
	"reflect"

	"github.com/qjebbs/go-sqlt/internal/schema"
)

// materialized holds the decoded rows of a join table.
type materialized struct {
	parent int           // registration index of the parent table
	to     *schema.Field // relation field of the parent
	on     *schema.Field // key column of the parent
	equals *schema.Field // key column of the child

	records []reflect.Value // *C in row order
	index   map[any][]int   // key to record positions, in row order
}

func (m *materialized) buildIndex() {
	m.index = make(map[any][]int)
	for i, rec := range m.records {
		key, ok := keyOf(rec.Elem().FieldByIndex(m.equals.Index))
		if !ok {
			continue
		}
		m.index[key] = append(m.index[key], i)
	}
}

// attach sets the relation field of parent, a struct value, to the records
// whose key equals the parent's key.
func (m *materialized) attach(parent reflect.Value) {
	key, ok := keyOf(parent.FieldByIndex(m.on.Index))
	var positions []int
	if ok {
		positions = m.index[key]
	}
	children := reflect.MakeSlice(m.to.Type, 0, len(positions))
	for _, p := range positions {
		children = reflect.Append(children, m.records[p].Elem())
	}
	parent.FieldByIndex(m.to.Index).Set(children)
}

// keyOf returns the comparable key held by v, dereferencing pointers.
// NULL and non-comparable values have no key, a driver.Valuer is NULL
// when it values to nil.
func keyOf(v reflect.Value) (any, bool) {
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if !v.CanInterface() || !v.Comparable() {
		return nil, false
	}
	key := v.Interface()
	if valuer, ok := key.(driver.Valuer); ok {
		value, err := valuer.Value()
		if err != nil || value == nil {
			return nil, false
		}
	}
	return key, true
}

// assembler decodes master rows and fills their relation fields.
type assembler struct {
	root  *tableData
	joins []*materialized // by registration index, nil for the root
}

// attachNested fills the relation fields of joined records whose parent is
// another join. Deeper joins are registered later, so walking backwards
// completes every record before it is attached to its own parent.
func (a *assembler) attachNested() {
	for i := len(a.joins) - 1; i > 0; i-- {
		m := a.joins[i]
		if m == nil || m.parent == 0 {
			continue
		}
		for _, rec := range a.joins[m.parent].records {
			m.attach(rec.Elem())
		}
	}
}

// decode decodes a master row into dst, a pointer to the root struct.
func (a *assembler) decode(row Row, dst reflect.Value) error {
	if err := decodeRow(row, a.root.info, dst); err != nil {
		return err
	}
	for _, m := range a.joins {
		if m == nil || m.parent != 0 {
			continue
		}
		m.attach(dst.Elem())
	}
	return nil
}
