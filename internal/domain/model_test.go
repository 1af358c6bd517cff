package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicEvent(name string, p float64) *BasicEvent {
	return &BasicEvent{ID: NewIdentifier(name, nil, true), Prob: NewConstant(p)}
}

func TestRegistry_RejectsRedefinition(t *testing.T) {
	r := NewRegistry()
	id := NewIdentifier("A", nil, true)
	require.NoError(t, r.Register(id, basicEvent("A", 0.1)))

	err := r.Register(id, basicEvent("A", 0.2))
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, KindRedefinitionError, derr.Kind)
}

func TestRegistry_LookupWalksOutward(t *testing.T) {
	r := NewRegistry()
	inner := NewIdentifier("A", []string{"Group"}, true)
	require.NoError(t, r.Register(inner, basicEvent("A", 0.1)))

	_, ok := r.Lookup("A", []string{"Group", "Sub"}, true)
	assert.True(t, ok, "a public entry of an enclosing scope must resolve from a nested scope")

	_, ok = r.Lookup("A", nil, true)
	assert.False(t, ok, "a scope outside the registering container must not resolve it")
}

func TestNewFormula_RejectsDuplicateArgument(t *testing.T) {
	a := basicEvent("A", 0.1)
	_, err := NewFormula("TopGate", ConnectiveAnd, 0, []Arg{BasicArg(a), BasicArg(a)})
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, KindDuplicateArgumentError, derr.Kind)
}

func TestNewFormula_RejectsWrongArity(t *testing.T) {
	a := basicEvent("A", 0.1)
	_, err := NewFormula("Inverter", ConnectiveNot, 0, []Arg{BasicArg(a), basicArg2(t)})
	require.Error(t, err)
}

func basicArg2(t *testing.T) Arg {
	t.Helper()
	return BasicArg(basicEvent("B", 0.1))
}

func TestNewFormula_AtleastRequiresMinNumberWithinRange(t *testing.T) {
	a, b := basicEvent("A", 0.1), basicEvent("B", 0.1)
	_, err := NewFormula("Voter", ConnectiveAtleast, 3, []Arg{BasicArg(a), BasicArg(b)})
	require.Error(t, err, "min greater than the argument count must be rejected")
}

func TestNewFormula_AtleastRejectsDegenerateOR(t *testing.T) {
	a, b := basicEvent("A", 0.1), basicEvent("B", 0.1)
	_, err := NewFormula("Voter", ConnectiveAtleast, 1, []Arg{BasicArg(a), BasicArg(b)})
	require.Error(t, err, "atleast min=1 degenerates to OR and must be rejected")
}

func TestNewFormula_AtleastRejectsDegenerateAND(t *testing.T) {
	a, b := basicEvent("A", 0.1), basicEvent("B", 0.1)
	_, err := NewFormula("Voter", ConnectiveAtleast, 2, []Arg{BasicArg(a), BasicArg(b)})
	require.Error(t, err, "atleast min=n degenerates to AND and must be rejected")
}

// buildSimpleTree makes a single-gate AND fault tree over two basic events,
// mirroring the S1 end-to-end scenario spec §8 names.
func buildSimpleTree(t *testing.T, pa, pb float64) *FaultTree {
	t.Helper()
	a, b := basicEvent("A", pa), basicEvent("B", pb)
	f, err := NewFormula("TopGate", ConnectiveAnd, 0, []Arg{BasicArg(a), BasicArg(b)})
	require.NoError(t, err)
	top := &Gate{ID: NewIdentifier("TopGate", nil, true), Formula: f}
	return NewFaultTree(NewIdentifier("Top", nil, true), top, []*Gate{top}, []*BasicEvent{a, b}, nil)
}

func TestModel_Validate_AcceptsWellFormedTree(t *testing.T) {
	ft := buildSimpleTree(t, 0.1, 0.2)
	m := NewModel()
	require.NoError(t, m.Registry.Register(ft.Top.ID, ft.Top))
	for _, b := range ft.BasicEvents {
		require.NoError(t, m.Registry.Register(b.ID, b))
	}
	m.Trees = []*FaultTree{ft}

	assert.NoError(t, m.Validate())
}

func TestModel_Validate_RejectsOutOfRangeProbability(t *testing.T) {
	ft := buildSimpleTree(t, 0.1, 1.5)
	m := NewModel()
	require.NoError(t, m.Registry.Register(ft.Top.ID, ft.Top))
	for _, b := range ft.BasicEvents {
		require.NoError(t, m.Registry.Register(b.ID, b))
	}
	m.Trees = []*FaultTree{ft}

	err := m.Validate()
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, KindValidationError, derr.Kind)
}

func TestModel_Validate_DetectsGateCycle(t *testing.T) {
	g1 := &Gate{ID: NewIdentifier("G1", nil, true)}
	g2 := &Gate{ID: NewIdentifier("G2", nil, true)}
	f1, err := NewFormula("G1", ConnectiveNot, 0, []Arg{GateArg(g2)})
	require.NoError(t, err)
	f2, err := NewFormula("G2", ConnectiveNot, 0, []Arg{GateArg(g1)})
	require.NoError(t, err)
	g1.Formula, g2.Formula = f1, f2

	ft := NewFaultTree(NewIdentifier("Top", nil, true), g1, []*Gate{g1, g2}, nil, nil)
	m := NewModel()
	require.NoError(t, m.Registry.Register(g1.ID, g1))
	require.NoError(t, m.Registry.Register(g2.ID, g2))
	m.Trees = []*FaultTree{ft}

	err = m.Validate()
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, KindCycleError, derr.Kind)
}

func TestParameterGraph_DetectsCycle(t *testing.T) {
	p1 := NewParameter(NewIdentifier("p1", nil, true), UnitUnitless, NewConstant(0))
	p2 := NewParameter(NewIdentifier("p2", nil, true), UnitUnitless, NewConstant(0))
	p1.Child = p2
	p2.Child = p1

	err := NewParameterGraph([]*Parameter{p1, p2}).CheckAcyclic()
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, KindCycleError, derr.Kind)
	// A direct parameter-to-parameter alias is itself an edge in the
	// dependency graph: the cycle must name both p1 and p2, not just the
	// starting node repeated.
	assert.Contains(t, derr.Message, "p1")
	assert.Contains(t, derr.Message, "p2")
}

func TestCCFGroup_BetaFactor_Derive(t *testing.T) {
	a, b := basicEvent("A", 0.009), basicEvent("B", 0.009)
	group := &CCFGroup{
		ID:      NewIdentifier("PumpsCCF", nil, true),
		Model:   CCFBetaFactor,
		Members: []*BasicEvent{a, b},
		Qtotal:  NewConstant(0.01),
		Factors: []Expression{NewConstant(0.1)},
	}

	events, substitution, err := group.Derive()
	require.NoError(t, err)
	require.Len(t, events, 1, "beta-factor with two members has one common-cause event: both fail together")
	require.Len(t, substitution, 2, "one substitution formula per member")

	mean, err := events[0].Prob.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 0.001, mean, 1e-12) // Qtotal * beta
}

func TestCCFGroup_Derive_RejectsSingleMember(t *testing.T) {
	a := basicEvent("A", 0.01)
	group := &CCFGroup{
		ID:      NewIdentifier("Lonely", nil, true),
		Model:   CCFBetaFactor,
		Members: []*BasicEvent{a},
		Qtotal:  NewConstant(0.01),
		Factors: []Expression{NewConstant(0.1)},
	}
	_, _, err := group.Derive()
	assert.Error(t, err)
}
