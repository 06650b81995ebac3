package dialect

import (
	"database/sql"
	"reflect"
	"time"

	"github.com/pkg/errors"
)

// ColumnKind is the dialect independent kind of a column.
type ColumnKind int

// Column kinds.
const (
	KindUnknown ColumnKind = iota
	KindBool
	KindSmallInt
	KindInt
	KindBigInt
	KindReal
	KindDouble
	KindText
	KindBlob
	KindTime
	KindUUID
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	nullKinds = map[reflect.Type]ColumnKind{
		reflect.TypeOf(sql.NullBool{}):    KindBool,
		reflect.TypeOf(sql.NullInt16{}):   KindSmallInt,
		reflect.TypeOf(sql.NullInt32{}):   KindInt,
		reflect.TypeOf(sql.NullInt64{}):   KindBigInt,
		reflect.TypeOf(sql.NullFloat64{}): KindDouble,
		reflect.TypeOf(sql.NullString{}):  KindText,
		reflect.TypeOf(sql.NullTime{}):    KindTime,
		reflect.TypeOf(sql.NullByte{}):    KindSmallInt,
	}
)

// KindOf returns the column kind of a Go type. Pointers are dereferenced,
// and 16 byte arrays such as UUIDs map to KindUUID.
func KindOf(typ reflect.Type) (ColumnKind, error) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == timeType {
		return KindTime, nil
	}
	if k, ok := nullKinds[typ]; ok {
		return k, nil
	}
	switch typ.Kind() {
	case reflect.Bool:
		return KindBool, nil
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return KindSmallInt, nil
	case reflect.Int32, reflect.Uint16:
		return KindInt, nil
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return KindBigInt, nil
	case reflect.Float32:
		return KindReal, nil
	case reflect.Float64:
		return KindDouble, nil
	case reflect.String:
		return KindText, nil
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return KindBlob, nil
		}
	case reflect.Array:
		if typ.Elem().Kind() == reflect.Uint8 && typ.Len() == 16 {
			return KindUUID, nil
		}
	}
	return KindUnknown, errors.Errorf("no column type for %s", typ)
}
