package sqlt

import (
	"database/sql"
	"reflect"
	"strconv"

	"github.com/mitranim/refut"
	"github.com/pkg/errors"

	"github.com/qjebbs/go-sqlt/internal/schema"
)

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// decodeRow assigns the columns of row to the tagged fields of dst, a
// pointer to a struct of info.Type. Relation fields are left untouched.
func decodeRow(row Row, info *schema.Struct, dst reflect.Value) error {
	for _, f := range info.Columns {
		value, ok := row[f.Column]
		if !ok {
			return ErrRowDecode.while("decoding row").becausef("column %q of %s is missing", f.Column, info.Type)
		}
		field := refut.RvalFieldByPathAlloc(dst, f.Index)
		if err := assign(field, value); err != nil {
			return ErrRowDecode.while("decoding row").because(
				errors.Wrapf(err, "column %q into %s.%s", f.Column, info.Type, f.Name),
			)
		}
	}
	return nil
}

// assign sets dst, an addressable value, from a value read from a row.
func assign(dst reflect.Value, src any) error {
	if dst.CanAddr() && reflect.PointerTo(dst.Type()).Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(src)
	}
	if src == nil {
		if !refut.IsRkindNilable(dst.Kind()) {
			return errors.Errorf("type %s is not nilable, but the column was null", dst.Type())
		}
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	if dst.Kind() == reflect.Ptr {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			return assign(dst, nil)
		}
		return assign(dst, sv.Elem().Interface())
	}
	switch {
	case dst.Kind() == reflect.String && isBytes(sv):
		dst.SetString(string(sv.Bytes()))
		return nil
	case isBytes(dst) && sv.Kind() == reflect.String:
		dst.SetBytes([]byte(sv.String()))
		return nil
	case dst.Kind() == reflect.Bool:
		return assignBool(dst, sv)
	case isNumber(dst.Kind()) && isNumber(sv.Kind()):
		return assignNumber(dst, sv)
	case isNumber(dst.Kind()) && (sv.Kind() == reflect.String || isBytes(sv)):
		return assignNumberText(dst, textOf(sv))
	case sv.Kind() == dst.Kind() && sv.Type().ConvertibleTo(dst.Type()):
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return errors.Errorf("cannot assign %T to %s", src, dst.Type())
}

func assignBool(dst, sv reflect.Value) error {
	switch {
	case sv.Kind() == reflect.Bool:
		dst.SetBool(sv.Bool())
	case isInt(sv.Kind()):
		dst.SetBool(sv.Int() != 0)
	case isUint(sv.Kind()):
		dst.SetBool(sv.Uint() != 0)
	case sv.Kind() == reflect.String || isBytes(sv):
		b, err := strconv.ParseBool(textOf(sv))
		if err != nil {
			return errors.Wrap(err, "parsing bool")
		}
		dst.SetBool(b)
	default:
		return errors.Errorf("cannot assign %s to %s", sv.Type(), dst.Type())
	}
	return nil
}

func assignNumber(dst, sv reflect.Value) error {
	switch {
	case isInt(dst.Kind()):
		var n int64
		switch {
		case isInt(sv.Kind()):
			n = sv.Int()
		case isUint(sv.Kind()):
			u := sv.Uint()
			if u > 1<<63-1 {
				return errors.Errorf("value %d overflows %s", u, dst.Type())
			}
			n = int64(u)
		default:
			f := sv.Float()
			if f != float64(int64(f)) {
				return errors.Errorf("value %v is not an integer", f)
			}
			n = int64(f)
		}
		if dst.OverflowInt(n) {
			return errors.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case isUint(dst.Kind()):
		var u uint64
		switch {
		case isInt(sv.Kind()):
			if sv.Int() < 0 {
				return errors.Errorf("value %d overflows %s", sv.Int(), dst.Type())
			}
			u = uint64(sv.Int())
		case isUint(sv.Kind()):
			u = sv.Uint()
		default:
			f := sv.Float()
			if f < 0 || f != float64(uint64(f)) {
				return errors.Errorf("value %v is not an unsigned integer", f)
			}
			u = uint64(f)
		}
		if dst.OverflowUint(u) {
			return errors.Errorf("value %d overflows %s", u, dst.Type())
		}
		dst.SetUint(u)
	default:
		var f float64
		switch {
		case isInt(sv.Kind()):
			f = float64(sv.Int())
		case isUint(sv.Kind()):
			f = float64(sv.Uint())
		default:
			f = sv.Float()
		}
		if dst.OverflowFloat(f) {
			return errors.Errorf("value %v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
	}
	return nil
}

func assignNumberText(dst reflect.Value, text string) error {
	switch {
	case isInt(dst.Kind()):
		n, err := strconv.ParseInt(text, 10, dst.Type().Bits())
		if err != nil {
			return errors.Wrap(err, "parsing integer")
		}
		dst.SetInt(n)
	case isUint(dst.Kind()):
		u, err := strconv.ParseUint(text, 10, dst.Type().Bits())
		if err != nil {
			return errors.Wrap(err, "parsing unsigned integer")
		}
		dst.SetUint(u)
	default:
		f, err := strconv.ParseFloat(text, dst.Type().Bits())
		if err != nil {
			return errors.Wrap(err, "parsing float")
		}
		dst.SetFloat(f)
	}
	return nil
}

func textOf(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return string(v.Bytes())
}

func isBytes(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}
