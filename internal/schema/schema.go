// Package schema parses `sqlt` struct tags into table schemas and
// resolves field pointers back to the tagged fields they address.
package schema

import (
	"reflect"
	"strings"
	"sync"

	"github.com/mitranim/refut"
	"github.com/pkg/errors"

	"github.com/qjebbs/go-sqlt/internal/tag/syntax"
)

// TagName is the struct tag key read by the schema parser.
const TagName = "sqlt"

// TableNamer is implemented by types whose table name differs
// from the Go type name.
type TableNamer interface {
	TableName() string
}

// Field is a tagged struct field.
type Field struct {
	Name     string       // Go field name
	Column   string       // column name, empty for relations
	Index    []int        // index path from the root struct
	Type     reflect.Type // declared field type
	PK       bool
	Indexed  bool
	Relation bool
	Elem     reflect.Type // element struct type of a relation
}

// Nullable reports whether the column may hold NULL: nilable kinds and
// the sql.Null* types.
func (f *Field) Nullable() bool {
	if refut.IsRkindNilable(f.Type.Kind()) {
		return true
	}
	return f.Type.PkgPath() == "database/sql" && strings.HasPrefix(f.Type.Name(), "Null")
}

// Struct is the parsed schema of a struct type.
type Struct struct {
	Type      reflect.Type
	Table     string
	Columns   []*Field
	Relations []*Field

	err error
}

var structCache sync.Map

// Of returns the schema of t, which must be a struct type or a pointer
// to one. Results are cached per type.
func Of(t reflect.Type) (*Struct, error) {
	if t == nil {
		return nil, errors.New("nil type")
	}
	typ := refut.RtypeDeref(t)
	if typ.Kind() != reflect.Struct {
		return nil, errors.Errorf("expected struct, got %s", t)
	}
	cached, found := structCache.Load(typ)
	if found {
		info := cached.(*Struct)
		return info, info.err
	}
	info := parseStruct(typ)
	structCache.Store(typ, info)
	return info, info.err
}

// Column returns the column field with the given name, or nil.
func (s *Struct) Column(name string) *Field {
	for _, f := range s.Columns {
		if f.Column == name {
			return f
		}
	}
	return nil
}

// PK returns the primary key fields in declaration order.
func (s *Struct) PK() []*Field {
	var pk []*Field
	for _, f := range s.Columns {
		if f.PK {
			pk = append(pk, f)
		}
	}
	return pk
}

// ColumnNames returns the column names in declaration order.
func (s *Struct) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, f := range s.Columns {
		names[i] = f.Column
	}
	return names
}

func parseStruct(typ reflect.Type) *Struct {
	info := &Struct{Type: typ}
	table, err := tableName(typ)
	if err != nil {
		info.err = err
		return info
	}
	info.Table = table
	seen := make(map[string]bool)

	var findFields func(t reflect.Type, basePath []int) error
	findFields = func(t reflect.Type, basePath []int) error {
		for i := 0; i < t.NumField(); i++ {
			sfield := t.Field(i)
			currentPath := append(append([]int(nil), basePath...), i)
			tag, tagged := sfield.Tag.Lookup(TagName)
			if sfield.Anonymous && !tagged {
				if sfield.Type.Kind() == reflect.Ptr && sfield.Type.Elem().Kind() == reflect.Struct {
					return errors.Errorf("%s.%s: embedded struct pointers are not supported", typ, sfield.Name)
				}
				if sfield.Type.Kind() == reflect.Struct {
					if err := findFields(sfield.Type, currentPath); err != nil {
						return err
					}
					continue
				}
			}
			if !tagged || tag == "-" || !refut.IsSfieldExported(sfield) {
				continue
			}
			ti, err := syntax.Parse(tag)
			if err != nil {
				return errors.Wrapf(err, "%s.%s: invalid %s tag %q", typ, sfield.Name, TagName, tag)
			}
			f := &Field{
				Name:     sfield.Name,
				Column:   ti.Column,
				Index:    currentPath,
				Type:     sfield.Type,
				PK:       ti.PK,
				Indexed:  ti.Index,
				Relation: ti.Relation,
			}
			if f.Relation {
				if sfield.Type.Kind() != reflect.Slice || sfield.Type.Elem().Kind() != reflect.Struct {
					return errors.Errorf("%s.%s: relation field must be a slice of structs, got %s", typ, sfield.Name, sfield.Type)
				}
				f.Elem = sfield.Type.Elem()
				info.Relations = append(info.Relations, f)
				continue
			}
			if f.Column == "" {
				if f.PK || f.Indexed {
					return errors.Errorf("%s.%s: missing column name", typ, sfield.Name)
				}
				continue
			}
			if seen[f.Column] {
				return errors.Errorf("%s.%s: redundant column %q", typ, sfield.Name, f.Column)
			}
			seen[f.Column] = true
			info.Columns = append(info.Columns, f)
		}
		return nil
	}

	if err := findFields(typ, nil); err != nil {
		info.err = err
		return info
	}
	if len(info.Columns) == 0 {
		info.err = errors.Errorf("no fields with %q tag found in struct %s", TagName, typ)
	}
	return info
}

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

func tableName(typ reflect.Type) (string, error) {
	name := typ.Name()
	if reflect.PointerTo(typ).Implements(tableNamerType) {
		name = reflect.New(typ).Interface().(TableNamer).TableName()
	}
	if !syntax.IsAllowedName(name) {
		return "", errors.Errorf("invalid table name %q for %s", name, typ)
	}
	return name, nil
}
