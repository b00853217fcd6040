package domain

import (
	"encoding/json"
	"fmt"
)

// Flexible is a JSON field that older clients send as an encoded string
// ("[{\"min\":1,...}]") and newer clients send as the structure itself.
// It is normalized exactly once, at unmarshal time; everything past the
// boundary works with Value only.
type Flexible[T any] struct {
	value  T
	raw    string
	wasRaw bool
}

func NewFlexible[T any](v T) Flexible[T] {
	return Flexible[T]{value: v}
}

func (f Flexible[T]) Value() T { return f.value }

// WasRaw reports whether the field arrived as an encoded string.
func (f Flexible[T]) WasRaw() bool { return f.wasRaw }

func (f *Flexible[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("Flexible.UnmarshalJSON: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &f.value); err != nil {
			return fmt.Errorf("Flexible.UnmarshalJSON: decode raw payload: %w", err)
		}
		f.raw = raw
		f.wasRaw = true
		return nil
	}

	if err := json.Unmarshal(data, &f.value); err != nil {
		return fmt.Errorf("Flexible.UnmarshalJSON: %w", err)
	}
	return nil
}

func (f Flexible[T]) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(f.value)
	if err != nil {
		return nil, fmt.Errorf("Flexible.MarshalJSON: %w", err)
	}
	return b, nil
}
