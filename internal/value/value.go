package value

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over the supported value types.
type Value interface {
	value()
}

// Null represents an explicit JSON null.
type Null struct{}

func (Null) value() {}

// String is a text value. CSV cells always arrive as String.
type String string

func (String) value() {}

// Bool is a literal boolean, typically from a configured default or JSON input.
type Bool bool

func (Bool) value() {}

// Int is an integer value.
type Int int64

func (Int) value() {}

// Number holds the literal text of a JSON number that does not fit Int,
// such as a latitude. The text is emitted verbatim on output.
type Number string

func (Number) value() {}

// List is an ordered sequence of values.
type List []Value

func (List) value() {}

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Strings builds a List of String values.
func Strings(items ...string) List {
	l := make(List, len(items))
	for i, s := range items {
		l[i] = String(s)
	}
	return l
}

// IsEmpty reports whether v carries no usable value: nil, Null or "".
func IsEmpty(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return val == ""
	default:
		return false
	}
}

// Text returns the textual form of a scalar value.
// Lists and objects report ok=false.
func Text(v Value) (s string, ok bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Bool:
		return strconv.FormatBool(bool(val)), true
	case Int:
		return strconv.FormatInt(int64(val), 10), true
	case Number:
		return string(val), true
	default:
		return "", false
	}
}

// Equal reports whether a and b hold the same type and contents.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String, Bool, Int, Number:
		return a == b
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, exists := bv[k]
			if !exists || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a shallow copy of the object.
func (obj Object) Clone() Object {
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's string comparison orders by UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// FromAny converts decoded Go data (encoding/json, yaml.v3) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Number(strconv.FormatUint(val, 10)), nil
		}
		return Int(val), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return Int(int64(val)), nil
		}
		return Number(strconv.FormatFloat(val, 'f', -1, 64)), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		return Number(val.String()), nil
	case []any:
		l := make(List, len(val))
		for i, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = conv
		}
		return l, nil
	case []string:
		return Strings(val...), nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
