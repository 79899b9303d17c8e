// Package opt holds a small optional value used where "unavailable" must not
// collapse into a zero value.
package opt

// Value is either a present value or nothing.
type Value[T any] struct {
	v  T
	ok bool
}

// Some wraps a present value.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Ok reports whether the value is present.
func (o Value[T]) Ok() bool {
	return o.ok
}

// Or returns the value when present and def otherwise.
func (o Value[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}
