package dataset

import (
	"strconv"
	"strings"
)

// ColumnType is the declared type of a column. Every cell in a column shares
// the column's type; missing cells carry the type with the null flag set.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
)

// String returns the serialized name of the type, used in CSV headers.
func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "text"
	}
}

// ParseColumnType is the inverse of ColumnType.String. Unknown names fall
// back to text, the widest type.
func ParseColumnType(s string) ColumnType {
	switch s {
	case "int":
		return TypeInt
	case "float":
		return TypeFloat
	case "bool":
		return TypeBool
	default:
		return TypeText
	}
}

// Value is one cell. Exactly one of the payload fields is meaningful,
// selected by Type; Null marks the typed missing sentinel.
type Value struct {
	Type  ColumnType
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Null  bool
}

// Text creates a text value.
func Text(s string) Value { return Value{Type: TypeText, Str: s} }

// Int64 creates an integer value.
func Int64(i int64) Value { return Value{Type: TypeInt, Int: i} }

// Float64 creates a float value.
func Float64(f float64) Value { return Value{Type: TypeFloat, Float: f} }

// Boolean creates a bool value.
func Boolean(b bool) Value { return Value{Type: TypeBool, Bool: b} }

// Null returns the missing sentinel for the given type.
func NullOf(t ColumnType) Value { return Value{Type: t, Null: true} }

// IsNull reports whether the value is the missing sentinel.
func (v Value) IsNull() bool { return v.Null }

// Render returns the canonical textual form of the value. Nulls render as
// the empty string.
func (v Value) Render() string {
	if v.Null {
		return ""
	}
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// AsInt returns the value as an int64 where that conversion is lossless:
// int values directly, text values that parse as integers.
func (v Value) AsInt() (int64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Type {
	case TypeInt:
		return v.Int, true
	case TypeFloat:
		i := int64(v.Float)
		if float64(i) == v.Float {
			return i, true
		}
		return 0, false
	case TypeText:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// AsFloat returns the value as a float64 if numeric.
func (v Value) AsFloat() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Type {
	case TypeInt:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	case TypeText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy reports whether a value reads as an affirmative flag. Used for
// primary-section markers and boolean filter options.
func (v Value) Truthy() bool {
	if v.Null {
		return false
	}
	switch v.Type {
	case TypeBool:
		return v.Bool
	case TypeInt:
		return v.Int != 0
	case TypeFloat:
		return v.Float != 0
	default:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true", "t", "yes", "y", "1":
			return true
		}
		return false
	}
}

// Coerce converts the value to the target column type. Converting to text
// uses the canonical rendering, so no data is lost; this is the merge
// store's conflict policy. Failed narrowing conversions yield null.
func (v Value) Coerce(target ColumnType) Value {
	if v.Type == target {
		return v
	}
	if v.Null {
		return NullOf(target)
	}
	switch target {
	case TypeText:
		return Text(v.Render())
	case TypeInt:
		if i, ok := v.AsInt(); ok {
			return Int64(i)
		}
	case TypeFloat:
		if f, ok := v.AsFloat(); ok {
			return Float64(f)
		}
	case TypeBool:
		return Boolean(v.Truthy())
	}
	return NullOf(target)
}

// Equal compares two values after rendering, so an int 101 and the text
// "101" stored under a coerced column compare equal.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null && o.Null
	}
	return v.Render() == o.Render()
}
