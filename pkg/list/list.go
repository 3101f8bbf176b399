package list

// List is a singly linked list with O(1) prepend. The zero value is an empty
// list ready for use. A List is not safe for concurrent use; callers sharing
// one across goroutines must serialize access themselves.
type List[T any] struct {
	head *node[T]
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Push prepends item in O(1) and returns the list so calls can be chained.
// The most recently pushed item becomes the head.
func (l *List[T]) Push(item T) *List[T] {
	l.head = &node[T]{item: item, next: l.head}
	return l
}

// Fold reduces l from head to tail: the accumulator starts at init and is
// replaced by f(item, acc) for each item in turn. Folding an empty list
// returns init. Fold never modifies the list. It is a package-level function
// because Go methods cannot introduce the accumulator type parameter.
func Fold[T, A any](l *List[T], f func(item T, acc A) A, init A) A {
	acc := init
	for n := l.head; n != nil; n = n.next {
		acc = f(n.item, acc)
	}
	return acc
}

// ForEach calls f once per item, head to tail. It is Fold with the
// accumulator discarded.
func (l *List[T]) ForEach(f func(item T)) {
	Fold(l, func(item T, _ struct{}) struct{} {
		f(item)
		return struct{}{}
	}, struct{}{})
}
