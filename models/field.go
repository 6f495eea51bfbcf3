package models

import (
	"encoding/json"
	"fmt"
)

// NotFound stands in for any value the extractor could not read.
const NotFound = "NOT-FOUND"

// Field is an extracted value or the NotFound sentinel. The zero value is
// the sentinel.
type Field[T any] struct {
	Value T
	OK    bool
}

func Found[T any](v T) Field[T] {
	return Field[T]{Value: v, OK: true}
}

func Missing[T any]() Field[T] {
	return Field[T]{}
}

// Any returns the value, or NotFound when the field is missing.
func (f Field[T]) Any() any {
	if !f.OK {
		return NotFound
	}
	return f.Value
}

func (f Field[T]) String() string {
	if !f.OK {
		return NotFound
	}
	return fmt.Sprint(f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Any())
}
