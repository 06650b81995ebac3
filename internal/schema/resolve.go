package schema

import (
	"reflect"

	"github.com/pkg/errors"
)

// Resolve finds the tagged field of probe addressed by ptr.
//
// probe must be a non-nil pointer to an instance of s.Type. A field
// matches when its address and type equal those of ptr. Exactly one
// field must match: pointers outside probe, to untagged fields, or
// matching several zero-sized fields are all rejected.
func (s *Struct) Resolve(probe, ptr reflect.Value) (*Field, error) {
	if probe.Kind() != reflect.Ptr || probe.IsNil() || probe.Elem().Type() != s.Type {
		return nil, errors.Errorf("invalid probe for %s", s.Type)
	}
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return nil, errors.Errorf("accessor on %s returned a nil pointer", s.Type)
	}
	addr := ptr.Pointer()
	want := ptr.Type().Elem()
	root := probe.Elem()

	var found *Field
	matches := 0
	for _, group := range [][]*Field{s.Columns, s.Relations} {
		for _, f := range group {
			fv := root.FieldByIndex(f.Index)
			if fv.Type() != want || fv.Addr().Pointer() != addr {
				continue
			}
			matches++
			if found == nil {
				found = f
			}
		}
	}
	switch matches {
	case 0:
		return nil, errors.Errorf("accessor does not reference a tagged field of %s", s.Type)
	case 1:
		return found, nil
	default:
		return nil, errors.Errorf("accessor is ambiguous: %d fields of %s share its address", matches, s.Type)
	}
}
