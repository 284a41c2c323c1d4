// Package usage holds the best-effort live usage values reported for nodes
// and pods. A value is either available or the "unavailable" sentinel.
package usage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const Sentinel = "unavailable"

type Result[T any] struct {
	value     T
	available bool
}

func Available[T any](v T) Result[T] {
	return Result[T]{value: v, available: true}
}

func Unavailable[T any]() Result[T] {
	return Result[T]{}
}

func (r Result[T]) Get() (T, bool) {
	return r.value, r.available
}

func (r Result[T]) IsAvailable() bool {
	return r.available
}

func (r Result[T]) String() string {
	if !r.available {
		return Sentinel
	}
	return fmt.Sprint(r.value)
}

// Equal lets go-cmp compare results without reaching into unexported fields.
func (r Result[T]) Equal(o Result[T]) bool {
	if r.available != o.available {
		return false
	}
	if !r.available {
		return true
	}
	return fmt.Sprint(r.value) == fmt.Sprint(o.value)
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.available {
		return json.Marshal(Sentinel)
	}
	return json.Marshal(r.value)
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var sentinel string
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) && json.Unmarshal(data, &sentinel) == nil && sentinel == Sentinel {
		*r = Unavailable[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode usage value: %w", err)
	}

	*r = Available(v)
	return nil
}
