package list

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect[T any](l *List[T]) []T {
	return Fold(l, func(item T, acc []T) []T {
		return append(acc, item)
	}, nil)
}

func TestPushPrependsAndChains(t *testing.T) {
	l := New[int]()
	got := l.Push(1).Push(2).Push(3)
	require.Same(t, l, got)
	require.Equal(t, []int{3, 2, 1}, collect(l))
}

func TestFoldVisitsHeadToTail(t *testing.T) {
	l := New[int]()
	for i := 1; i <= 4; i++ {
		l.Push(i)
	}
	joined := Fold(l, func(item int, acc string) string {
		return acc + strconv.Itoa(item)
	}, "")
	require.Equal(t, "4321", joined)
}

func TestFoldEmptyReturnsInit(t *testing.T) {
	require.Equal(t, 42, Fold(New[string](), func(string, int) int { return 0 }, 42))
	require.Equal(t, "seed", Fold(New[int](), func(int, string) string { return "" }, "seed"))
	require.Nil(t, Fold(New[bool](), func(bool, []bool) []bool { return []bool{true} }, nil))
}

func TestFoldCountsPushes(t *testing.T) {
	l := New[string]()
	const n = 17
	for i := 0; i < n; i++ {
		l.Push("x")
	}
	count := Fold(l, func(_ string, acc int) int { return acc + 1 }, 0)
	require.Equal(t, n, count)
}

func TestFoldLeavesListIntact(t *testing.T) {
	l := New[int]().Push(1).Push(2)
	first := collect(l)
	second := collect(l)
	require.Equal(t, first, second)
	require.Equal(t, []int{2, 1}, second)
}

func TestForEachVisitsEachItemOnce(t *testing.T) {
	l := New[int]()
	for i := 10; i >= 1; i-- {
		l.Push(i)
	}
	var seen []int
	l.ForEach(func(item int) { seen = append(seen, item) })
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seen)
}

func TestForEachEmptyNeverCalls(t *testing.T) {
	calls := 0
	New[int]().ForEach(func(int) { calls++ })
	require.Zero(t, calls)
}

func TestZeroValueIsEmptyList(t *testing.T) {
	var l List[string]
	require.Empty(t, collect(&l))
	l.Push("only")
	require.Equal(t, []string{"only"}, collect(&l))
}
