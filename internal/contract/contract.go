// Package contract provides runtime shape validation for task inputs and
// outputs and for AI tool arguments.
//
// A contract is any Validator. Validation never stops at the first problem:
// every violation found is reported, each as a path plus message pair.
package contract

import (
	"fmt"
	"sort"
)

// Violation describes a single way a value failed a contract.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validator accepts or rejects a value. A nil or empty slice means the value
// conforms.
type Validator interface {
	Validate(value any) []Violation
}

// StringShape validates string values.
type StringShape struct {
	// MinLen is the minimum length in bytes. Zero means no minimum.
	MinLen int
}

// String returns a validator accepting any string.
func String() *StringShape {
	return &StringShape{}
}

// Validate implements Validator.
func (s *StringShape) Validate(value any) []Violation {
	str, ok := value.(string)
	if !ok {
		return []Violation{{Message: fmt.Sprintf("expected string, got %T", value)}}
	}
	if s.MinLen > 0 && len(str) < s.MinLen {
		return []Violation{{Message: fmt.Sprintf("length %d is below minimum %d", len(str), s.MinLen)}}
	}
	return nil
}

// IntShape validates integer values. JSON decoding produces float64, so
// whole-number floats are accepted.
type IntShape struct {
	Min *int64
	Max *int64
}

// Int returns a validator accepting any integer.
func Int() *IntShape {
	return &IntShape{}
}

// AtLeast constrains the minimum accepted value.
func (s *IntShape) AtLeast(min int64) *IntShape {
	s.Min = &min
	return s
}

// AtMost constrains the maximum accepted value.
func (s *IntShape) AtMost(max int64) *IntShape {
	s.Max = &max
	return s
}

// Validate implements Validator.
func (s *IntShape) Validate(value any) []Violation {
	n, ok := toInt64(value)
	if !ok {
		return []Violation{{Message: fmt.Sprintf("expected integer, got %T", value)}}
	}
	var violations []Violation
	if s.Min != nil && n < *s.Min {
		violations = append(violations, Violation{Message: fmt.Sprintf("value %d is below minimum %d", n, *s.Min)})
	}
	if s.Max != nil && n > *s.Max {
		violations = append(violations, Violation{Message: fmt.Sprintf("value %d is above maximum %d", n, *s.Max)})
	}
	return violations
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// FloatShape validates numeric values.
type FloatShape struct{}

// Float returns a validator accepting any number.
func Float() *FloatShape {
	return &FloatShape{}
}

// Validate implements Validator.
func (s *FloatShape) Validate(value any) []Violation {
	switch value.(type) {
	case float32, float64, int, int32, int64:
		return nil
	}
	return []Violation{{Message: fmt.Sprintf("expected number, got %T", value)}}
}

// BoolShape validates boolean values.
type BoolShape struct{}

// Bool returns a validator accepting any boolean.
func Bool() *BoolShape {
	return &BoolShape{}
}

// Validate implements Validator.
func (s *BoolShape) Validate(value any) []Violation {
	if _, ok := value.(bool); !ok {
		return []Violation{{Message: fmt.Sprintf("expected boolean, got %T", value)}}
	}
	return nil
}

// EnumShape validates that a string is one of a fixed set of values.
type EnumShape struct {
	Values []string
}

// Enum returns a validator accepting only the given string values.
func Enum(values ...string) *EnumShape {
	return &EnumShape{Values: values}
}

// Validate implements Validator.
func (s *EnumShape) Validate(value any) []Violation {
	str, ok := value.(string)
	if !ok {
		return []Violation{{Message: fmt.Sprintf("expected string, got %T", value)}}
	}
	for _, v := range s.Values {
		if str == v {
			return nil
		}
	}
	return []Violation{{Message: fmt.Sprintf("%q is not one of %v", str, s.Values)}}
}

// ArrayShape validates that a value is a slice whose elements all conform to
// the element contract.
type ArrayShape struct {
	Elem Validator
}

// Array returns a validator for slices of elem-conforming values.
func Array(elem Validator) *ArrayShape {
	return &ArrayShape{Elem: elem}
}

// Validate implements Validator.
func (s *ArrayShape) Validate(value any) []Violation {
	items, ok := toSlice(value)
	if !ok {
		return []Violation{{Message: fmt.Sprintf("expected array, got %T", value)}}
	}
	if s.Elem == nil {
		return nil
	}
	var violations []Violation
	for i, item := range items {
		for _, v := range s.Elem.Validate(item) {
			violations = append(violations, prefixed(fmt.Sprintf("[%d]", i), v))
		}
	}
	return violations
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// ObjectShape validates a map of named fields against per-field contracts.
type ObjectShape struct {
	Fields   map[string]Validator
	Required []string
}

// Object returns a validator for string-keyed maps. All declared fields are
// optional until marked required.
func Object(fields map[string]Validator) *ObjectShape {
	return &ObjectShape{Fields: fields}
}

// Require marks fields that must be present.
func (s *ObjectShape) Require(names ...string) *ObjectShape {
	s.Required = append(s.Required, names...)
	return s
}

// Validate implements Validator. Every field violation is collected, never
// just the first, with the field name prefixed onto the violation path.
func (s *ObjectShape) Validate(value any) []Violation {
	obj, ok := value.(map[string]any)
	if !ok {
		return []Violation{{Message: fmt.Sprintf("expected object, got %T", value)}}
	}

	var violations []Violation
	for _, name := range s.Required {
		if _, present := obj[name]; !present {
			violations = append(violations, Violation{Path: name, Message: "required field is missing"})
		}
	}

	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := s.Fields[name]
		val, present := obj[name]
		if !present || field == nil {
			continue
		}
		for _, v := range field.Validate(val) {
			violations = append(violations, prefixed(name, v))
		}
	}
	return violations
}

// AnyShape accepts every value. Useful as an explicit "no contract" marker in
// tool declarations.
type AnyShape struct{}

// Any returns a validator that always passes.
func Any() *AnyShape {
	return &AnyShape{}
}

// Validate implements Validator.
func (s *AnyShape) Validate(any) []Violation {
	return nil
}

func prefixed(prefix string, v Violation) Violation {
	if v.Path == "" {
		return Violation{Path: prefix, Message: v.Message}
	}
	if v.Path[0] == '[' {
		return Violation{Path: prefix + v.Path, Message: v.Message}
	}
	return Violation{Path: prefix + "." + v.Path, Message: v.Message}
}
