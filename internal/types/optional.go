package types

import "encoding/json"

// Optional distinguishes a JSON field that was absent from one that was
// explicitly null: partial task updates leave absent fields untouched but
// treat null as "clear this field".
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some is a set Optional holding value. Used by tests and internal callers.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: &value}
}

// Null is a set Optional holding an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
