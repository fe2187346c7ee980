package helpers

import "fmt"

type Optional[T any] struct {
	hasValue bool
	t        T
}

func Some[T any](t T) Optional[T] {
	return Optional[T]{true, t}
}

func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsEmpty() bool {
	return !o.hasValue
}

func (o Optional[T]) HasValue() bool {
	return o.hasValue
}

func (o Optional[T]) Value() T {
	return o.t
}

func (o Optional[T]) ValueOr(fallback T) T {
	if o.hasValue {
		return o.t
	}
	return fallback
}

func (o Optional[T]) String() string {
	if !o.hasValue {
		return "<empty>"
	}
	return fmt.Sprint(o.t)
}
