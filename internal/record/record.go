package record

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Model is the minimal contract a physical model must satisfy: gorm's Tabler.
type Model interface {
	TableName() string
}

// Record wraps one model instance with by-column attribute access. The
// generic CRUD path never sees concrete model types; it reads and writes
// columns through this wrapper and hands the underlying instance to gorm.
type Record struct {
	ptr  reflect.Value // pointer to the struct
	cols map[string]int
}

// New returns a Record around a fresh zero instance of the prototype's type.
func New(prototype Model) *Record {
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return wrapValue(reflect.New(t))
}

// Wrap returns a Record around an existing instance. The instance must be a
// pointer to a struct.
func Wrap(instance Model) *Record {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("record: Wrap needs a struct pointer, got %T", instance))
	}
	return wrapValue(v)
}

func wrapValue(ptr reflect.Value) *Record {
	t := ptr.Elem().Type()
	cols := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		cols[ColumnName(f)] = i
	}
	return &Record{ptr: ptr, cols: cols}
}

// Model returns the wrapped instance for handing to the persistence layer.
func (r *Record) Model() Model {
	return r.ptr.Interface().(Model)
}

// Has reports whether the model carries a column with the given name.
func (r *Record) Has(column string) bool {
	_, ok := r.cols[column]
	return ok
}

// Get returns the current value of a column. Pointer fields are dereferenced;
// a nil pointer yields (nil, true).
func (r *Record) Get(column string) (interface{}, bool) {
	idx, ok := r.cols[column]
	if !ok {
		return nil, false
	}
	f := r.ptr.Elem().Field(idx)
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return nil, true
		}
		return f.Elem().Interface(), true
	}
	return f.Interface(), true
}

// IsZero reports whether a column still holds its zero value.
func (r *Record) IsZero(column string) bool {
	idx, ok := r.cols[column]
	if !ok {
		return true
	}
	return r.ptr.Elem().Field(idx).IsZero()
}

// Set assigns a column, coercing across the conversions the flat payload
// world needs: nil into pointers and maps, strings into UUIDs and times,
// assignable and convertible kinds, and values into pointer fields.
func (r *Record) Set(column string, value interface{}) error {
	idx, ok := r.cols[column]
	if !ok {
		return fmt.Errorf("record: no column %q on %s", column, r.Model().TableName())
	}
	f := r.ptr.Elem().Field(idx)

	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}

	target := f.Type()
	indirect := target
	if indirect.Kind() == reflect.Ptr {
		indirect = indirect.Elem()
	}

	coerced, err := coerce(value, indirect)
	if err != nil {
		return fmt.Errorf("record: column %q: %w", column, err)
	}

	if target.Kind() == reflect.Ptr {
		p := reflect.New(indirect)
		p.Elem().Set(coerced)
		f.Set(p)
		return nil
	}
	f.Set(coerced)
	return nil
}

// Columns lists the model's column names.
func (r *Record) Columns() []string {
	out := make([]string, 0, len(r.cols))
	for c := range r.cols {
		out = append(out, c)
	}
	return out
}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
	timeType = reflect.TypeOf(time.Time{})
)

func coerce(value interface{}, target reflect.Type) (reflect.Value, error) {
	v := reflect.ValueOf(value)

	if v.Type() == target {
		return v, nil
	}

	// String payloads into richer column types.
	if v.Kind() == reflect.String {
		s := v.String()
		switch target {
		case uuidType:
			id, err := uuid.Parse(s)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("bad uuid %q", s)
			}
			return reflect.ValueOf(id), nil
		case timeType:
			for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if ts, err := time.Parse(layout, s); err == nil {
					return reflect.ValueOf(ts), nil
				}
			}
			return reflect.Value{}, fmt.Errorf("bad timestamp %q", s)
		}
	}

	if v.Type().AssignableTo(target) {
		return v, nil
	}
	if v.Type().ConvertibleTo(target) && safeConvert(v.Type(), target) {
		return v.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %T to %s", value, target)
}

// safeConvert blocks the convertible-but-lossy pairs, like numerics into
// strings (Convert would produce a rune string).
func safeConvert(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}
	return true
}

// ColumnName derives the physical column for a struct field: an explicit
// gorm column tag wins, else gorm's default lower-snake naming.
func ColumnName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("gorm"); ok {
		for _, part := range strings.Split(tag, ";") {
			if strings.HasPrefix(part, "column:") {
				return strings.TrimPrefix(part, "column:")
			}
		}
	}
	return toSnake(f.Name)
}

func toSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			lowerNext := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			lowerPrev := i > 0 && (runes[i-1] >= 'a' && runes[i-1] <= 'z' || runes[i-1] >= '0' && runes[i-1] <= '9')
			if i > 0 && (lowerPrev || lowerNext) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
