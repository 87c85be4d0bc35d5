// Package hashset provides a minimal generic set.
package hashset

type Set[T comparable] map[T]struct{}

func New[T comparable]() Set[T] {
	return map[T]struct{}{}
}

func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}
