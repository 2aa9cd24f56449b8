package endpoint

// Arg is a possibly-absent argument value.
type Arg interface {
	// Lookup returns the value and whether it is present.
	Lookup() (any, bool)
}

// Args maps parameter names to argument values. A missing key is absent.
type Args map[string]Arg

// Opt is an optional value: either Some(v) or None. The zero value is None.
//
// Absence is explicit, so an empty string is a present value and is sent
// as such, while None is never sent.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// FromPtr returns Some(*p) for a non-nil pointer and None otherwise.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value if present and def otherwise.
func (o Opt[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// Lookup implements Arg.
func (o Opt[T]) Lookup() (any, bool) {
	return o.value, o.set
}
