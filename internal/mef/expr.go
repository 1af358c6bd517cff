package mef

import (
	"strconv"

	"github.com/scram-project/scram/internal/domain"
)

// parseExpressionWrapper handles an <expression> element: exactly one
// child, which is the actual expression tree.
func (l *loader) parseExpressionWrapper(n *node) (domain.Expression, error) {
	if len(n.Children) != 1 {
		return nil, l.errf(n, "<expression> requires exactly one child, got %d", len(n.Children))
	}
	return l.parseExpressionNode(n.Children[0])
}

func (l *loader) parseExpressionNode(n *node) (domain.Expression, error) {
	switch n.Tag {
	case "float":
		v, err := l.floatAttr(n, "value")
		if err != nil {
			return nil, err
		}
		return domain.NewConstant(v), nil

	case "int":
		v, err := l.intAttr(n, "value")
		if err != nil {
			return nil, err
		}
		return domain.NewConstant(float64(v)), nil

	case "parameter":
		name, ok := n.attr("name")
		if !ok {
			return nil, l.errf(n, "<parameter> requires a name attribute")
		}
		p, ok := l.params[dlower(name)]
		if !ok {
			return nil, domain.NewUndefinedElement(l.loc(n), name)
		}
		return p, nil

	case "system-mission-time":
		return domain.NewMissionTime(l.missionTime), nil

	case "neg":
		return l.unary(n, domain.NewNeg)
	case "add":
		return l.variadic(n, 2, domain.NewAdd)
	case "sub":
		return l.binary(n, domain.NewSub)
	case "mul":
		return l.variadic(n, 2, domain.NewMul)
	case "div":
		return l.binary(n, domain.NewDiv)
	case "abs":
		return l.unary(n, domain.NewAbs)
	case "min":
		return l.variadic(n, 1, domain.NewMinFn)
	case "max":
		return l.variadic(n, 1, domain.NewMaxFn)
	case "mean":
		return l.variadic(n, 1, domain.NewMeanFn)
	case "pow":
		return l.binary(n, domain.NewPow)
	case "exp":
		return l.unary(n, domain.NewExp)
	case "log":
		return l.unary(n, domain.NewLog)
	case "log10":
		return l.unary(n, domain.NewLog10)
	case "mod":
		return l.binary(n, domain.NewMod)

	case "bool-not":
		return l.unary(n, domain.NewBoolNot)
	case "bool-and":
		return l.variadic(n, 2, domain.NewBoolAnd)
	case "bool-or":
		return l.variadic(n, 2, domain.NewBoolOr)
	case "eq":
		return l.binary(n, domain.NewEq)
	case "ne":
		return l.binary(n, domain.NewNe)
	case "lt":
		return l.binary(n, domain.NewLt)
	case "le":
		return l.binary(n, domain.NewLe)
	case "gt":
		return l.binary(n, domain.NewGt)
	case "ge":
		return l.binary(n, domain.NewGe)
	case "ite":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 3 {
			return nil, l.errf(n, "<ite> requires exactly 3 children, got %d", len(args))
		}
		e, err := domain.NewIte(args[0], args[1], args[2])
		return e, attachLocation(err, l.loc(n))

	case "uniform-deviate":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, l.errf(n, "<uniform-deviate> requires exactly 2 children, got %d", len(args))
		}
		e, err := domain.NewUniform(args[0], args[1])
		return e, attachLocation(err, l.loc(n))

	case "normal-deviate":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, l.errf(n, "<normal-deviate> requires exactly 2 children, got %d", len(args))
		}
		e, err := domain.NewNormal(args[0], args[1])
		return e, attachLocation(err, l.loc(n))

	case "lognormal-deviate":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		switch len(args) {
		case 2:
			e, err := domain.NewLogNormal(args[0], args[1])
			return e, attachLocation(err, l.loc(n))
		case 3:
			e, err := domain.NewLogNormalEF(args[0], args[1], args[2])
			return e, attachLocation(err, l.loc(n))
		default:
			return nil, l.errf(n, "<lognormal-deviate> requires 2 (mu, sigma) or 3 (mean, error-factor, level) children, got %d", len(args))
		}

	case "gamma-deviate":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, l.errf(n, "<gamma-deviate> requires exactly 2 children, got %d", len(args))
		}
		e, err := domain.NewGamma(args[0], args[1])
		return e, attachLocation(err, l.loc(n))

	case "beta-deviate":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, l.errf(n, "<beta-deviate> requires exactly 2 children, got %d", len(args))
		}
		e, err := domain.NewBeta(args[0], args[1])
		return e, attachLocation(err, l.loc(n))

	case "histogram":
		return l.parseHistogram(n)

	case "exponential":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, l.errf(n, "<exponential> requires exactly 2 children, got %d", len(args))
		}
		e, err := domain.NewExponential(args[0], args[1])
		return e, attachLocation(err, l.loc(n))

	case "GLM":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 4 {
			return nil, l.errf(n, "<GLM> requires exactly 4 children, got %d", len(args))
		}
		e, err := domain.NewGLM(args[0], args[1], args[2], args[3])
		return e, attachLocation(err, l.loc(n))

	case "weibull":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		if len(args) != 4 {
			return nil, l.errf(n, "<weibull> requires exactly 4 children, got %d", len(args))
		}
		e, err := domain.NewWeibull(args[0], args[1], args[2], args[3])
		return e, attachLocation(err, l.loc(n))

	case "periodic-test":
		args, err := l.childExpressions(n)
		if err != nil {
			return nil, err
		}
		e, err := domain.NewPeriodicTest(args...)
		return e, attachLocation(err, l.loc(n))

	default:
		return nil, l.errf(n, "unrecognised expression element <%s>", n.Tag)
	}
}

func (l *loader) childExpressions(n *node) ([]domain.Expression, error) {
	out := make([]domain.Expression, len(n.Children))
	for i, c := range n.Children {
		e, err := l.parseExpressionNode(c)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (l *loader) unary(n *node, ctor func(domain.Expression) (domain.Expression, error)) (domain.Expression, error) {
	args, err := l.childExpressions(n)
	if err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, l.errf(n, "<%s> requires exactly 1 child, got %d", n.Tag, len(args))
	}
	e, err := ctor(args[0])
	return e, attachLocation(err, l.loc(n))
}

func (l *loader) binary(n *node, ctor func(a, b domain.Expression) (domain.Expression, error)) (domain.Expression, error) {
	args, err := l.childExpressions(n)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, l.errf(n, "<%s> requires exactly 2 children, got %d", n.Tag, len(args))
	}
	e, err := ctor(args[0], args[1])
	return e, attachLocation(err, l.loc(n))
}

func (l *loader) variadic(n *node, minArgs int, ctor func(...domain.Expression) (domain.Expression, error)) (domain.Expression, error) {
	args, err := l.childExpressions(n)
	if err != nil {
		return nil, err
	}
	if len(args) < minArgs {
		return nil, l.errf(n, "<%s> requires at least %d children, got %d", n.Tag, minArgs, len(args))
	}
	e, err := ctor(args...)
	return e, attachLocation(err, l.loc(n))
}

func (l *loader) parseHistogram(n *node) (domain.Expression, error) {
	bins := n.childrenTagged("bin")
	if len(bins) == 0 {
		return nil, l.errf(n, "<histogram> requires at least one <bin>")
	}
	boundaries := make([]domain.Expression, len(bins))
	weights := make([]domain.Expression, len(bins))
	for i, bin := range bins {
		b, err := l.floatAttr(bin, "b")
		if err != nil {
			return nil, err
		}
		w, err := l.floatAttr(bin, "w")
		if err != nil {
			return nil, err
		}
		boundaries[i] = domain.NewConstant(b)
		weights[i] = domain.NewConstant(w)
	}
	e, err := domain.NewHistogram(boundaries, weights)
	return e, attachLocation(err, l.loc(n))
}

func (l *loader) floatAttr(n *node, name string) (float64, error) {
	s, ok := n.attr(name)
	if !ok {
		return 0, l.errf(n, "<%s> requires a %q attribute", n.Tag, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, l.errf(n, "<%s> attribute %q is not a number: %q", n.Tag, name, s)
	}
	return v, nil
}

func (l *loader) intAttr(n *node, name string) (int, error) {
	s, ok := n.attr(name)
	if !ok {
		return 0, l.errf(n, "<%s> requires a %q attribute", n.Tag, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, l.errf(n, "<%s> attribute %q is not an integer: %q", n.Tag, name, s)
	}
	return v, nil
}
