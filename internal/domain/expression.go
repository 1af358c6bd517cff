package domain

import "math/rand"

// Unit is the optional tag a Parameter's expression carries, per spec §3.
type Unit string

const (
	UnitUnitless  Unit = "unitless"
	UnitBool      Unit = "bool"
	UnitInt       Unit = "int"
	UnitFloat     Unit = "float"
	UnitHours     Unit = "hours"
	UnitPerHour   Unit = "hours-1"
	UnitYears     Unit = "years"
	UnitPerYear   Unit = "years-1"
	UnitFit       Unit = "fit"
	UnitDemands   Unit = "demands"
)

// Expression is the closed tagged-union every numeric term in the model
// implements: constants, parameters, mission time, random deviates, arithmetic,
// boolean and the built-in PRA functions. See spec §3/§4.B.
type Expression interface {
	// Mean returns the deterministic point value. Idempotent: never mutates
	// sampling state. For a deviate, this substitutes the mean of each
	// parameter expression rather than sampling (the v0.12 rule).
	Mean() (float64, error)

	// Sample draws once per enclosing sampling cycle; within that cycle,
	// further calls return the memoised draw. Cleared by Reset.
	Sample(rng *rand.Rand) (float64, error)

	// Reset clears this node's memoised draw and recurses into its children,
	// tearing down an entire sampling cycle from any entry point.
	Reset()

	// Min and Max are analytic support bounds used by validation.
	Min() (float64, error)
	Max() (float64, error)

	// IsConstant is true iff no deviate is reachable from this node.
	IsConstant() bool

	// Children returns the expression's direct operands, for generic
	// tree walks (Reset, IsConstant, validation).
	Children() []Expression
}

// sampleCache is the memoisation embedded in every non-trivial Expression node.
type sampleCache struct {
	has bool
	val float64
}

func (c *sampleCache) get() (float64, bool) { return c.val, c.has }
func (c *sampleCache) set(v float64)        { c.val, c.has = v, true }
func (c *sampleCache) clear()               { c.has = false }

// resetWith clears the cache and recursively resets every child.
func (c *sampleCache) resetWith(children []Expression) {
	c.clear()
	for _, ch := range children {
		ch.Reset()
	}
}

// isConstantOf is the shared IsConstant rule: a deviate is never constant;
// everything else is constant iff every child is.
func isConstantOf(isDeviate bool, children []Expression) bool {
	if isDeviate {
		return false
	}
	for _, c := range children {
		if !c.IsConstant() {
			return false
		}
	}
	return true
}

// meanAll evaluates Mean on every child expression, short-circuiting on error.
func meanAll(children []Expression) ([]float64, error) {
	out := make([]float64, len(children))
	for i, c := range children {
		v, err := c.Mean()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// sampleAll draws from every child using the same rng, short-circuiting on error.
func sampleAll(children []Expression, rng *rand.Rand) ([]float64, error) {
	out := make([]float64, len(children))
	for i, c := range children {
		v, err := c.Sample(rng)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// bounds collects Min/Max of every child expression.
func bounds(children []Expression) (mins, maxs []float64, err error) {
	mins = make([]float64, len(children))
	maxs = make([]float64, len(children))
	for i, c := range children {
		mins[i], err = c.Min()
		if err != nil {
			return nil, nil, err
		}
		maxs[i], err = c.Max()
		if err != nil {
			return nil, nil, err
		}
	}
	return mins, maxs, nil
}

// Constant is a fixed real value. It is always constant and never samples.
type Constant struct {
	V float64
}

// NewConstant builds a Constant expression.
func NewConstant(v float64) *Constant { return &Constant{V: v} }

func (c *Constant) Mean() (float64, error)            { return c.V, nil }
func (c *Constant) Sample(*rand.Rand) (float64, error) { return c.V, nil }
func (c *Constant) Reset()                             {}
func (c *Constant) Min() (float64, error)              { return c.V, nil }
func (c *Constant) Max() (float64, error)              { return c.V, nil }
func (c *Constant) IsConstant() bool                   { return true }
func (c *Constant) Children() []Expression             { return nil }

// Parameter is a named, reusable expression with an optional unit tag. It is
// the node that makes the sample-coherence invariant observable: every
// reference to the same *Parameter is the same pointer, so its own
// sampleCache is what two callers see agree within a cycle. Parameter also
// caches its Mean across repeated reads within a session (spec §4.C).
type Parameter struct {
	ID       Identifier
	Unit     Unit
	Child    Expression
	cache    sampleCache
	meanOnce bool
	meanVal  float64
}

// NewParameter wraps child under name/unit. The parameter graph's acyclicity
// is checked by the owning Model, not here (a Parameter can't see the graph).
func NewParameter(id Identifier, unit Unit, child Expression) *Parameter {
	return &Parameter{ID: id, Unit: unit, Child: child}
}

func (p *Parameter) Mean() (float64, error) {
	if p.meanOnce {
		return p.meanVal, nil
	}
	v, err := p.Child.Mean()
	if err != nil {
		return 0, err
	}
	p.meanVal, p.meanOnce = v, true
	return v, nil
}

func (p *Parameter) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := p.cache.get(); ok {
		return v, nil
	}
	v, err := p.Child.Sample(rng)
	if err != nil {
		return 0, err
	}
	p.cache.set(v)
	return v, nil
}

// Reset clears the sampling cache (not the mean cache, which spans a whole
// session per spec §4.C) and recurses into the child.
func (p *Parameter) Reset() {
	p.cache.clear()
	p.Child.Reset()
}

// InvalidateMean drops the cached mean; called when the child expression is
// replaced (spec §4.C: "Replacing a parameter's expression invalidates
// caches throughout the reverse-reachable set").
func (p *Parameter) InvalidateMean() { p.meanOnce = false }

func (p *Parameter) Min() (float64, error) { return p.Child.Min() }
func (p *Parameter) Max() (float64, error) { return p.Child.Max() }
func (p *Parameter) IsConstant() bool      { return p.Child.IsConstant() }
func (p *Parameter) Children() []Expression { return []Expression{p.Child} }

// MissionTime is the process-wide scalar mission duration. Spec §9
// re-architects the global as an explicit handle threaded by the façade;
// every MissionTime expression shares one *MissionTimeValue.
type MissionTimeValue struct {
	t float64
}

// NewMissionTimeValue creates a handle initialised to t.
func NewMissionTimeValue(t float64) *MissionTimeValue { return &MissionTimeValue{t: t} }

// Set changes the mission time. Callers (the analysis façade) are
// responsible for the cache-invalidation sweep this triggers (spec §5).
func (m *MissionTimeValue) Set(t float64) { m.t = t }

// Get returns the current mission time.
func (m *MissionTimeValue) Get() float64 { return m.t }

// MissionTime is the expression node reading a MissionTimeValue handle.
type MissionTime struct {
	Handle *MissionTimeValue
}

// NewMissionTime builds a MissionTime expression over handle.
func NewMissionTime(handle *MissionTimeValue) *MissionTime { return &MissionTime{Handle: handle} }

func (m *MissionTime) Mean() (float64, error)             { return m.Handle.Get(), nil }
func (m *MissionTime) Sample(*rand.Rand) (float64, error) { return m.Handle.Get(), nil }
func (m *MissionTime) Reset()                             {}
func (m *MissionTime) Min() (float64, error)              { return m.Handle.Get(), nil }
func (m *MissionTime) Max() (float64, error)              { return m.Handle.Get(), nil }
func (m *MissionTime) IsConstant() bool                   { return true }
func (m *MissionTime) Children() []Expression             { return nil }
