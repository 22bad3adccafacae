package pair

import (
	"cmp"
	"fmt"
	"slices"
)

// Pair is an unordered 2-tuple stored smaller-first, so Pair(a, b) and
// Pair(b, a) are the same value. It is comparable and can be used as a map key.
type Pair[T cmp.Ordered] struct {
	first  T
	second T
}

// New builds the canonical pair of a and b
func New[T cmp.Ordered](a, b T) Pair[T] {
	if b < a {
		a, b = b, a
	}
	return Pair[T]{first: a, second: b}
}

func (p Pair[T]) First() T  { return p.first }
func (p Pair[T]) Second() T { return p.second }

// Get returns both members, smaller first
func (p Pair[T]) Get() (T, T) { return p.first, p.second }

// IsMatching reports whether both members are equal (a self pair)
func (p Pair[T]) IsMatching() bool { return p.first == p.second }

// Less orders pairs by first member, then by second
func (p Pair[T]) Less(o Pair[T]) bool {
	if p.first == o.first {
		return p.second < o.second
	}
	return p.first < o.first
}

// Compare is Less in cmp style, for slices.SortFunc
func (p Pair[T]) Compare(o Pair[T]) int {
	if c := cmp.Compare(p.first, o.first); c != 0 {
		return c
	}
	return cmp.Compare(p.second, o.second)
}

func (p Pair[T]) String() string {
	return fmt.Sprintf("(%v, %v)", p.first, p.second)
}

// Set is a set of canonical pairs
type Set[T cmp.Ordered] map[Pair[T]]struct{}

func NewSet[T cmp.Ordered]() Set[T] {
	return make(Set[T])
}

func (s Set[T]) Add(p Pair[T]) { s[p] = struct{}{} }
func (s Set[T]) Len() int      { return len(s) }

func (s Set[T]) Has(p Pair[T]) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the members in Less order
func (s Set[T]) Sorted() []Pair[T] {
	out := make([]Pair[T], 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, Pair[T].Compare)
	return out
}
