package domain

// Boolean-valued expressions evaluate to 0.0/1.0 and reuse the opExpr
// machinery from arithmetic.go. These are distinct from Formula's gate
// operators (formula.go): a Formula combines Events into a fault
// tree's Boolean structure, while these combine numeric Expressions, e.g.
// inside an if-then-else built-in or a guard on a parameter's value.

func boolOf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func truthy(v float64) bool { return v != 0 }

var (
	opNot = &numOp{
		Name: "not", MinArgs: 1, MaxArgs: 1,
		Apply:   func(a []float64) (float64, error) { return boolOf(!truthy(a[0])), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opAnd = &numOp{
		Name: "bool-and", MinArgs: 2, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			for _, v := range a {
				if !truthy(v) {
					return 0, nil
				}
			}
			return 1, nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opOr = &numOp{
		Name: "bool-or", MinArgs: 2, MaxArgs: -1,
		Apply: func(a []float64) (float64, error) {
			for _, v := range a {
				if truthy(v) {
					return 1, nil
				}
			}
			return 0, nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opEq = &numOp{
		Name: "eq", MinArgs: 2, MaxArgs: 2,
		Apply:   func(a []float64) (float64, error) { return boolOf(a[0] == a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opNe = &numOp{
		Name: "ne", MinArgs: 2, MaxArgs: 2,
		Apply:   func(a []float64) (float64, error) { return boolOf(a[0] != a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opLt = &numOp{
		Name: "lt", MinArgs: 2, MaxArgs: 2,
		Apply:   func(a []float64) (float64, error) { return boolOf(a[0] < a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opLe = &numOp{
		Name: "le", MinArgs: 2, MaxArgs: 2,
		Apply:   func(a []float64) (float64, error) { return boolOf(a[0] <= a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opGt = &numOp{
		Name: "gt", MinArgs: 2, MaxArgs: 2,
		Apply:   func(a []float64) (float64, error) { return boolOf(a[0] > a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opGe = &numOp{
		Name: "ge", MinArgs: 2, MaxArgs: 2,
		Apply:   func(a []float64) (float64, error) { return boolOf(a[0] >= a[1]), nil },
		Support: func(mins, maxs []float64) (float64, float64, error) { return 0, 1, nil },
	}
	opIte = &numOp{
		Name: "ite", MinArgs: 3, MaxArgs: 3,
		Apply: func(a []float64) (float64, error) {
			if truthy(a[0]) {
				return a[1], nil
			}
			return a[2], nil
		},
		Support: func(mins, maxs []float64) (float64, float64, error) {
			return minOf(mins[1], mins[2]), maxOf(maxs[1], maxs[2]), nil
		},
	}
)

func NewBoolNot(a Expression) (Expression, error)         { return newOp(opNot, Location{}, a) }
func NewBoolAnd(args ...Expression) (Expression, error)    { return newOp(opAnd, Location{}, args...) }
func NewBoolOr(args ...Expression) (Expression, error)     { return newOp(opOr, Location{}, args...) }
func NewEq(a, b Expression) (Expression, error)            { return newOp(opEq, Location{}, a, b) }
func NewNe(a, b Expression) (Expression, error)            { return newOp(opNe, Location{}, a, b) }
func NewLt(a, b Expression) (Expression, error)            { return newOp(opLt, Location{}, a, b) }
func NewLe(a, b Expression) (Expression, error)            { return newOp(opLe, Location{}, a, b) }
func NewGt(a, b Expression) (Expression, error)            { return newOp(opGt, Location{}, a, b) }
func NewGe(a, b Expression) (Expression, error)            { return newOp(opGe, Location{}, a, b) }
func NewIte(cond, t, f Expression) (Expression, error)     { return newOp(opIte, Location{}, cond, t, f) }
