package sqlt

import (
	"reflect"

	"github.com/qjebbs/go-sqlt/internal/schema"
)

// CreatePolicy controls table creation.
type CreatePolicy uint

// Create policies, combined with |.
const (
	// DropTable drops an existing table before creating it.
	DropTable CreatePolicy = 1 << iota
	// IfNotExists creates the table only when it is missing.
	IfNotExists
	// Shallow skips the tables of relation fields.
	Shallow
)

// Has reports whether all flags of p2 are set in p.
func (p CreatePolicy) Has(p2 CreatePolicy) bool {
	return p&p2 == p2
}

// ColumnStructure describes one column of a table.
type ColumnStructure struct {
	Name     string
	Type     reflect.Type
	PK       bool
	Nullable bool
	Indexed  bool
}

// TableStructure describes a table and, through SubTables, the tables of
// its relation fields.
type TableStructure struct {
	Name      string
	Columns   []ColumnStructure
	SubTables []*TableStructure
}

// Structure returns the table structure of T.
func Structure[T any]() (*TableStructure, error) {
	return structureOf(reflect.TypeOf((*T)(nil)).Elem(), nil)
}

func structureOf(typ reflect.Type, visiting map[reflect.Type]bool) (*TableStructure, error) {
	info, err := schema.Of(typ)
	if err != nil {
		return nil, ErrResolution.while("reading table structure").because(err)
	}
	if visiting == nil {
		visiting = make(map[reflect.Type]bool)
	}
	if visiting[info.Type] {
		return nil, ErrResolution.while("reading table structure").becausef("cyclic relation through %s", info.Type)
	}
	visiting[info.Type] = true
	defer delete(visiting, info.Type)

	ts := &TableStructure{Name: info.Table}
	for _, f := range info.Columns {
		ts.Columns = append(ts.Columns, ColumnStructure{
			Name:     f.Column,
			Type:     f.Type,
			PK:       f.PK,
			Nullable: f.Nullable(),
			Indexed:  f.Indexed,
		})
	}
	for _, rel := range info.Relations {
		sub, err := structureOf(rel.Elem, visiting)
		if err != nil {
			return nil, err
		}
		ts.SubTables = append(ts.SubTables, sub)
	}
	return ts, nil
}
