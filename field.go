package sqlt

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/qjebbs/go-sqlt/internal/schema"
)

// Field is an accessor of a field of type V in the struct T.
//
//	name := sqlt.F(func(u *User) *string { return &u.Name })
//
// The accessor must return the address of a tagged field of its argument.
type Field[T, V any] func(*T) *V

// F returns fn as a Field, letting the compiler infer T and V.
func F[T, V any](fn func(*T) *V) Field[T, V] {
	return fn
}

// Key is a field accessor of T with the field type erased, used where
// fields of different types are listed together.
type Key[T any] interface {
	accessor
	ownedBy(*T)
}

// accessor is a type erased field accessor.
type accessor interface {
	owner() reflect.Type
	locate(probe reflect.Value) (reflect.Value, error)
}

var _ Key[struct{}] = Field[struct{}, int](nil)

func (f Field[T, V]) ownedBy(*T) {}

func (f Field[T, V]) owner() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (f Field[T, V]) locate(probe reflect.Value) (ptr reflect.Value, err error) {
	if f == nil {
		return reflect.Value{}, errors.Errorf("nil accessor of %s", f.owner())
	}
	p, ok := probe.Interface().(*T)
	if !ok {
		return reflect.Value{}, errors.Errorf("accessor of %s applied to %s", f.owner(), probe.Type())
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("accessor of %s panicked: %v", f.owner(), r)
		}
	}()
	return reflect.ValueOf(f(p)), nil
}

// resolve maps an accessor to the tagged field it addresses in probe.
func resolve(a accessor, info *schema.Struct, probe reflect.Value) (*schema.Field, error) {
	if a == nil {
		return nil, ErrResolution.becausef("nil accessor")
	}
	ptr, err := a.locate(probe)
	if err != nil {
		return nil, ErrResolution.because(err)
	}
	f, err := info.Resolve(probe, ptr)
	if err != nil {
		return nil, ErrResolution.because(err)
	}
	return f, nil
}
