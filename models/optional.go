package models

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Opt is a tri-state proposal field: absent (zero value), explicitly null,
// or set to a value. Absent fields are skipped when a patch is applied;
// null clears the target field.
type Opt[T any] struct {
	Value   T
	Present bool
	Null    bool
}

func Set[T any](v T) Opt[T] { return Opt[T]{Value: v, Present: true} }

func Null[T any]() Opt[T] { return Opt[T]{Present: true, Null: true} }

// Get returns the value, or the zero value when the field is null.
func (o Opt[T]) Get() T {
	if !o.Present || o.Null {
		var zero T
		return zero
	}
	return o.Value
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(data, []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
