package optional

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	present bool
	value   T
}

func (self Optional[T]) IsPresent() bool {
	return self.present
}

func (self Optional[T]) Value() T {
	return self.value
}

// OrElse returns the held value or the given fallback when absent.
func (self Optional[T]) OrElse(fallback T) T {
	if !self.present {
		return fallback
	}
	return self.value
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPointer converts a nil-able pointer into an Optional of the pointer.
func FromPointer[T any](v *T) Optional[*T] {
	if v == nil {
		return None[*T]()
	}
	return Some(v)
}
