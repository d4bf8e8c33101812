package policy

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type fakeEntry struct {
	arrival, remaining int64
	priority           int
}

func (f fakeEntry) Arrival() int64   { return f.arrival }
func (f fakeEntry) Remaining() int64 { return f.remaining }
func (f fakeEntry) Prio() int        { return f.priority }

type ComparatorsTestSuite struct {
	suite.Suite
}

func TestComparatorsTestSuite(t *testing.T) {
	suite.Run(t, new(ComparatorsTestSuite))
}

func (ts *ComparatorsTestSuite) TestFCFSOrdersByArrival() {
	early := fakeEntry{arrival: 1}
	late := fakeEntry{arrival: 2}

	ts.Negative(FCFSComparator(early, late))
	ts.Positive(FCFSComparator(late, early))
	ts.Zero(FCFSComparator(early, early))
}

func (ts *ComparatorsTestSuite) TestSJFBreaksTiesByArrival() {
	a := fakeEntry{arrival: 5, remaining: 3}
	b := fakeEntry{arrival: 1, remaining: 3}

	ts.Positive(SJFComparator(a, b))
	ts.Negative(SJFComparator(b, a))
}

func (ts *ComparatorsTestSuite) TestPRIOrdersByLowerPriorityValueFirst() {
	high := fakeEntry{priority: 0, arrival: 2}
	low := fakeEntry{priority: 5, arrival: 1}

	ts.Negative(PRIComparator(high, low))
}

func (ts *ComparatorsTestSuite) TestPPRIFallsBackToRemainingThenArrival() {
	a := fakeEntry{priority: 1, remaining: 4, arrival: 9}
	b := fakeEntry{priority: 1, remaining: 2, arrival: 1}

	ts.Positive(PPRIComparator(a, b))
}

func (ts *ComparatorsTestSuite) TestRRComparatorIsDegenerate() {
	a := fakeEntry{arrival: 99}
	b := fakeEntry{arrival: 1}
	ts.Zero(RRComparator(a, b))
	ts.Zero(RRComparator(b, a))
}

func (ts *ComparatorsTestSuite) TestComparatorForKnownSchemes() {
	ts.NotPanics(func() {
		for _, s := range []Scheme{FCFS, SJF, PSJF, PRI, PPRI, RR} {
			ts.NotNil(ComparatorFor(s))
		}
	})
}

func (ts *ComparatorsTestSuite) TestComparatorForUnknownSchemePanics() {
	ts.Panics(func() {
		ComparatorFor(Scheme(99))
	})
}

func (ts *ComparatorsTestSuite) TestPreemptive() {
	ts.True(PSJF.Preemptive())
	ts.True(PPRI.Preemptive())
	ts.False(FCFS.Preemptive())
	ts.False(SJF.Preemptive())
	ts.False(PRI.Preemptive())
	ts.False(RR.Preemptive())
}

func (ts *ComparatorsTestSuite) TestSchemeString() {
	ts.Equal("FCFS", FCFS.String())
	ts.Equal("RR", RR.String())
	ts.Equal("unknown", Scheme(42).String())
}
