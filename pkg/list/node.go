package list

type node[T any] struct {
	item T
	next *node[T]
}
