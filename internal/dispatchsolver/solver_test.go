package dispatchsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderingAxiomRejectsTooCloseDispatch(t *testing.T) {
	s := New()
	s.AddDomain(1, Domain{Lo: 0, Hi: 100})
	s.AddDomain(2, Domain{Lo: 0, Hi: 100})
	s.AddOrdering(1, 2, 5)

	s.Push()
	s.AssertClause(Clause{{Var: 1, Op: Eq, Value: 10}})
	require.Equal(t, Sat, s.Check())

	s.Push()
	s.AssertClause(Clause{{Var: 2, Op: Eq, Value: 12}})
	assert.Equal(t, Unsat, s.Check(), "12 is within the 5-tick gap of 10")
	s.Pop(1)

	s.Push()
	s.AssertClause(Clause{{Var: 2, Op: Eq, Value: 15}})
	assert.Equal(t, Sat, s.Check())
}

func TestCheckAssumptionsDoesNotCommit(t *testing.T) {
	s := New()
	s.AddDomain(1, Domain{Lo: 0, Hi: 10})

	assert.Equal(t, Unsat, s.CheckAssumptions([]Literal{{Var: 1, Op: Eq, Value: 20}}))
	// The failed hypothetical must not have stuck.
	assert.Equal(t, Sat, s.Check())
}

func TestConflictClauseForbidsExactPair(t *testing.T) {
	s := New()
	s.AddDomain(1, Domain{Lo: 0, Hi: 100})
	s.AddDomain(2, Domain{Lo: 0, Hi: 100})

	// Learned clause: blocker(var1)=10 and trailer(var2)=11 may not co-occur.
	s.AssertClause(Clause{{Var: 1, Op: Neq, Value: 10}, {Var: 2, Op: Neq, Value: 11}})

	s.Push()
	s.AssertClause(Clause{{Var: 1, Op: Eq, Value: 10}})
	require.Equal(t, Sat, s.Check())

	s.Push()
	s.AssertClause(Clause{{Var: 2, Op: Eq, Value: 11}})
	assert.Equal(t, Unsat, s.Check())
	s.Pop(1)

	s.Push()
	s.AssertClause(Clause{{Var: 2, Op: Eq, Value: 12}})
	assert.Equal(t, Sat, s.Check())
}

func TestPopUndoesAssignmentsAndClauses(t *testing.T) {
	s := New()
	s.AddDomain(1, Domain{Lo: 0, Hi: 10})

	s.Push()
	s.AssertClause(Clause{{Var: 1, Op: Eq, Value: 3}})
	require.Equal(t, Sat, s.Check())
	s.Pop(1)

	// var 1 is unassigned again, so any value back in-domain is fine.
	s.Push()
	s.AssertClause(Clause{{Var: 1, Op: Eq, Value: 7}})
	assert.Equal(t, Sat, s.Check())
}

func TestDomainBoundsReject(t *testing.T) {
	s := New()
	s.AddDomain(1, Domain{Lo: 0, Hi: 5})
	s.Push()
	s.AssertClause(Clause{{Var: 1, Op: Eq, Value: 5}})
	assert.Equal(t, Unsat, s.Check(), "5 is outside the half-open range [0,5)")
}
