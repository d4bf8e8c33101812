package queue

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type OrderedQueueTestSuite struct {
	suite.Suite
}

func TestOrderedQueueTestSuite(t *testing.T) {
	suite.Run(t, new(OrderedQueueTestSuite))
}

func ascending(a, b int) int { return a - b }

func (ts *OrderedQueueTestSuite) TestOfferMaintainsOrder() {
	q := New[int](ascending)

	ts.Equal(0, q.Offer(5))
	ts.Equal(0, q.Offer(2))
	ts.Equal(2, q.Offer(9))
	ts.Equal(1, q.Offer(3))

	ts.Equal(4, q.Size())
	for i, want := range []int{2, 3, 5, 9} {
		got, ok := q.At(i)
		ts.True(ok)
		ts.Equal(want, got)
	}
}

func (ts *OrderedQueueTestSuite) TestPeekAndPollOnEmpty() {
	q := New[int](ascending)

	_, ok := q.Peek()
	ts.False(ok)

	_, ok = q.Poll()
	ts.False(ok)
}

func (ts *OrderedQueueTestSuite) TestPollReturnsOfferedSingleton() {
	q := New[int](ascending)
	q.Offer(42)

	got, ok := q.Poll()
	ts.True(ok)
	ts.Equal(42, got)
	ts.Equal(0, q.Size())
}

func (ts *OrderedQueueTestSuite) TestOfferThenRemoveIdentityRestoresState() {
	q := New[int](ascending)
	q.Offer(1)
	q.Offer(2)
	before := q.Size()

	q.Offer(99)
	removed := q.RemoveIdentity(99)

	ts.Equal(1, removed)
	ts.Equal(before, q.Size())
}

func (ts *OrderedQueueTestSuite) TestRemoveAtOutOfRange() {
	q := New[int](ascending)
	q.Offer(1)

	_, ok := q.RemoveAt(q.Size())
	ts.False(ok)
}

func (ts *OrderedQueueTestSuite) TestRemoveIdentityAbsentReturnsZero() {
	q := New[int](ascending)
	q.Offer(1)

	ts.Equal(0, q.RemoveIdentity(404))
}

func (ts *OrderedQueueTestSuite) TestRemoveIdentityRemovesAllOccurrences() {
	// Pointers to distinct ints that happen to compare equal under the
	// ordering but are distinguishable by identity.
	a, b, c := new(int), new(int), new(int)
	*a, *b, *c = 1, 1, 2

	q := New[*int](func(x, y *int) int { return *x - *y })
	q.Offer(a)
	q.Offer(b)
	q.Offer(c)
	q.Offer(a) // a appears twice by identity

	ts.Equal(2, q.RemoveIdentity(a))
	ts.Equal(2, q.Size())
}

func (ts *OrderedQueueTestSuite) TestRemoveAtShiftsRemainingElements() {
	q := New[int](ascending)
	q.Offer(1)
	q.Offer(2)
	q.Offer(3)

	removed, ok := q.RemoveAt(1)
	ts.True(ok)
	ts.Equal(2, removed)

	got, ok := q.At(1)
	ts.True(ok)
	ts.Equal(3, got)
	ts.Equal(2, q.Size())
}

func (ts *OrderedQueueTestSuite) TestLargeVolume() {
	q := New[int](ascending)
	const n = 10000

	for i := n - 1; i >= 0; i-- {
		q.Offer(i)
	}
	ts.Equal(n, q.Size())

	for i := 0; i < n; i++ {
		got, ok := q.Poll()
		ts.True(ok)
		ts.Equal(i, got)
	}
	ts.Equal(0, q.Size())
}

func (ts *OrderedQueueTestSuite) TestDegenerateComparatorIsFIFO() {
	// A comparator that always reports equality degenerates Offer into
	// tail insertion, the realization RR relies on.
	always0 := func(a, b int) int { return 0 }
	q := New[int](always0)

	q.Offer(3)
	q.Offer(1)
	q.Offer(2)

	for _, want := range []int{3, 1, 2} {
		got, ok := q.Poll()
		ts.True(ok)
		ts.Equal(want, got)
	}
}
