package domain

import (
	"math"
	"math/rand"
)

// numOp is one arithmetic or boolean operator: a pure function of its
// operands' values plus an analytic rule for combining their Min/Max
// support into the result's support. Every arithmetic and boolean node in
// the expression tree is an instance of opExpr parameterised by a numOp —
// the operators are structurally identical (apply a function elementwise,
// memoise, recurse for Reset/IsConstant) and differ only in arity and math,
// so one generic node type replaces twenty near-duplicate structs.
type numOp struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means unbounded
	Apply   func(args []float64) (float64, error)
	Support func(mins, maxs []float64) (lo, hi float64, err error)
	Check   func(args []Expression) error // optional construction-time validation
}

// opExpr is an arithmetic or boolean expression node built from a numOp.
type opExpr struct {
	op    *numOp
	args  []Expression
	cache sampleCache
}

// newOp validates arity and any operator-specific precondition, then builds
// the node.
func newOp(op *numOp, loc Location, args ...Expression) (*opExpr, error) {
	if len(args) < op.MinArgs || (op.MaxArgs >= 0 && len(args) > op.MaxArgs) {
		return nil, NewValidationError(loc, "%s takes between %d and %d arguments, got %d",
			op.Name, op.MinArgs, op.MaxArgs, len(args))
	}
	if op.Check != nil {
		if err := op.Check(args); err != nil {
			return nil, err
		}
	}
	return &opExpr{op: op, args: args}, nil
}

func (e *opExpr) Mean() (float64, error) {
	vals, err := meanAll(e.args)
	if err != nil {
		return 0, err
	}
	return e.op.Apply(vals)
}

func (e *opExpr) Sample(rng *rand.Rand) (float64, error) {
	if v, ok := e.cache.get(); ok {
		return v, nil
	}
	vals, err := sampleAll(e.args, rng)
	if err != nil {
		return 0, err
	}
	v, err := e.op.Apply(vals)
	if err != nil {
		return 0, err
	}
	e.cache.set(v)
	return v, nil
}

func (e *opExpr) Reset()                 { e.cache.resetWith(e.args) }
func (e *opExpr) Children() []Expression { return e.args }
func (e *opExpr) IsConstant() bool       { return isConstantOf(false, e.args) }

func (e *opExpr) Min() (float64, error) {
	mins, maxs, err := bounds(e.args)
	if err != nil {
		return 0, err
	}
	lo, _, err := e.op.Support(mins, maxs)
	return lo, err
}

func (e *opExpr) Max() (float64, error) {
	mins, maxs, err := bounds(e.args)
	if err != nil {
		return 0, err
	}
	_, hi, err := e.op.Support(mins, maxs)
	return hi, err
}

func elementwiseSupport(combine func(a, b float64) float64) func(mins, maxs []float64) (float64, float64, error) {
	return func(mins, maxs []float64) (float64, float64, error) {
		lo, hi := mins[0], maxs[0]
		for i := 1; i < len(mins); i++ {
			lo = combine(lo, mins[i])
			hi = combine(hi, maxs[i])
		}
		return lo, hi, nil
	}
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

var (
	opNeg = &numOp{
		Name: "neg", MinArgs: 1, MaxArgs: 1,
		Apply:   func(a []float64) (float64, error) { return -a[0], nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return -maxs[0], -mins[0], nil },
	}
	opAdd = &numOp{
		Name: "add", MinArgs: 2, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			sum := 0.0
			for _, v := range a {
				sum += v
			}
			return sum, nil
		},
		Support: elementwiseSupport(func(a, b float64) float64 { return a + b }),
	}
	opSub = &numOp{
		Name: "sub", MinArgs: 2, MaxArgs: 2,
		Apply: func(a []float64) (float64, error) { return a[0] - a[1], nil },
		Support: func(mins, maxs []float64) (float64, float64, error) {
			return mins[0] - maxs[1], maxs[0] - mins[1], nil
		},
	}
	opMul = &numOp{
		Name: "mul", MinArgs: 2, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			p := 1.0
			for _, v := range a {
				p *= v
			}
			return p, nil
		},
		// Conservative: assumes non-negative operands, true for every
		// probability/rate expression this language can express.
		Support: elementwiseSupport(func(a, b float64) float64 { return a * b }),
	}
	opDiv = &numOp{
		Name: "div", MinArgs: 2, MaxArgs: 2,
		Apply: func(a []float64) (float64, error) {
			if a[1] == 0 {
				return 0, NewInvalidArgument(Location{}, "division by zero")
			}
			return a[0] / a[1], nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) {
			if mins[1] <= 0 && maxs[1] >= 0 {
				return 0, 0, NewValidationError(Location{}, "div denominator's support straddles zero")
			}
			return mins[0] / maxs[1], maxs[0] / mins[1], nil
		},
		Check: func(args []Expression) error {
			lo, err := args[1].Min()
			if err != nil {
				return err
			}
			hi, err := args[1].Max()
			if err != nil {
				return err
			}
			if lo <= 0 && hi >= 0 {
				return NewValidationError(Location{}, "div denominator's support straddles zero")
			}
			return nil
		},
	}
	opAbs = &numOp{
		Name: "abs", MinArgs: 1, MaxArgs: 1,
		Apply: func(a []float64) (float64, error) { return math.Abs(a[0]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) {
			lo, hi := mins[0], maxs[0]
			if lo <= 0 && hi >= 0 {
				return 0, maxOf(math.Abs(lo), math.Abs(hi)), nil
			}
			a, b := math.Abs(lo), math.Abs(hi)
			return minOf(a, b), maxOf(a, b), nil
		},
	}
	opMinFn = &numOp{
		Name: "min", MinArgs: 1, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			m := a[0]
			for _, v := range a[1:] {
				m = minOf(m, v)
			}
			return m, nil
		},
		Support: elementwiseSupport(minOf),
	}
	opMaxFn = &numOp{
		Name: "max", MinArgs: 1, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			m := a[0]
			for _, v := range a[1:] {
				m = maxOf(m, v)
			}
			return m, nil
		},
		Support: elementwiseSupport(maxOf),
	}
	opMeanFn = &numOp{
		Name: "mean", MinArgs: 1, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			sum := 0.0
			for _, v := range a {
				sum += v
			}
			return sum / float64(len(a)), nil
		},
		Support: elementwiseSupport(func(a, b float64) float64 { return (a + b) / 2 }),
	}
	opPow = &numOp{
		Name: "pow", MinArgs: 2, MaxArgs: 2,
		Apply: func(a []float64) (float64, error) { return math.Pow(a[0], a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) {
			vals := []float64{
				math.Pow(mins[0], mins[1]), math.Pow(mins[0], maxs[1]),
				math.Pow(maxs[0], mins[1]), math.Pow(maxs[0], maxs[1]),
			}
			lo, hi := vals[0], vals[0]
			for _, v := range vals[1:] {
				lo, hi = minOf(lo, v), maxOf(hi, v)
			}
			return lo, hi, nil
		},
	}
	opExp = &numOp{
		Name: "exp", MinArgs: 1, MaxArgs: 1,
		Apply:   func(a []float64) (float64, error) { return math.Exp(a[0]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return math.Exp(mins[0]), math.Exp(maxs[0]), nil },
	}
	opLog = &numOp{
		Name: "log", MinArgs: 1, MaxArgs: 1,
		Apply: func(a []float64) (float64, error) {
			if a[0] <= 0 {
				return 0, NewInvalidArgument(Location{}, "log of non-positive value")
			}
			return math.Log(a[0]), nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) {
			if mins[0] <= 0 {
				return 0, 0, NewValidationError(Location{}, "log argument's support includes non-positive values")
			}
			return math.Log(mins[0]), math.Log(maxs[0]), nil
		},
	}
	opLog10 = &numOp{
		Name: "log10", MinArgs: 1, MaxArgs: 1,
		Apply: func(a []float64) (float64, error) {
			if a[0] <= 0 {
				return 0, NewInvalidArgument(Location{}, "log10 of non-positive value")
			}
			return math.Log10(a[0]), nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) {
			if mins[0] <= 0 {
				return 0, 0, NewValidationError(Location{}, "log10 argument's support includes non-positive values")
			}
			return math.Log10(mins[0]), math.Log10(maxs[0]), nil
		},
	}
	opMod = &numOp{
		Name: "mod", MinArgs: 2, MaxArgs: 2,
		Apply: func(a []float64) (float64, error) {
			if a[1] == 0 {
				return 0, NewInvalidArgument(Location{}, "mod by zero")
			}
			return math.Mod(a[0], a[1]), nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, maxs[1], nil },
	}
)

// NewNeg, NewAdd, ... are the public constructors the MEF loader and tests use.
func NewNeg(a Expression) (Expression, error)            { return newOp(opNeg, Location{}, a) }
func NewAdd(args ...Expression) (Expression, error)       { return newOp(opAdd, Location{}, args...) }
func NewSub(a, b Expression) (Expression, error)          { return newOp(opSub, Location{}, a, b) }
func NewMul(args ...Expression) (Expression, error)       { return newOp(opMul, Location{}, args...) }
func NewDiv(a, b Expression) (Expression, error)          { return newOp(opDiv, Location{}, a, b) }
func NewAbs(a Expression) (Expression, error)             { return newOp(opAbs, Location{}, a) }
func NewMinFn(args ...Expression) (Expression, error)     { return newOp(opMinFn, Location{}, args...) }
func NewMaxFn(args ...Expression) (Expression, error)     { return newOp(opMaxFn, Location{}, args...) }
func NewMeanFn(args ...Expression) (Expression, error)    { return newOp(opMeanFn, Location{}, args...) }
func NewPow(a, b Expression) (Expression, error)          { return newOp(opPow, Location{}, a, b) }
func NewExp(a Expression) (Expression, error)             { return newOp(opExp, Location{}, a) }
func NewLog(a Expression) (Expression, error)             { return newOp(opLog, Location{}, a) }
func NewLog10(a Expression) (Expression, error)           { return newOp(opLog10, Location{}, a) }
func NewMod(a, b Expression) (Expression, error)          { return newOp(opMod, Location{}, a, b) }
