package livelist

// Registry is an append-only list of registered values, usually hooks.
type Registry[T any] struct {
	value []T
}

func (reg *Registry[T]) Register(value T) {
	reg.value = append(reg.value, value)
}

func (reg Registry[T]) Value() []T {
	return reg.value
}
