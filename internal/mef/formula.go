package mef

import "github.com/scram-project/scram/internal/domain"

// parseFormula handles a <formula> element: exactly one child, the
// operator or bare event reference it wraps. label names the enclosing
// gate, used only to tag DuplicateArgumentError messages.
func (l *loader) parseFormula(n *node, label string) (*domain.Formula, error) {
	if len(n.Children) != 1 {
		return nil, l.errf(n, "<formula> requires exactly one child, got %d", len(n.Children))
	}
	return l.parseFormulaNode(n.Children[0], label)
}

func (l *loader) parseFormulaNode(n *node, label string) (*domain.Formula, error) {
	switch n.Tag {
	case "and":
		return l.connective(n, label, domain.ConnectiveAnd, 0)
	case "or":
		return l.connective(n, label, domain.ConnectiveOr, 0)
	case "not":
		return l.connective(n, label, domain.ConnectiveNot, 0)
	case "nor":
		return l.connective(n, label, domain.ConnectiveNor, 0)
	case "nand":
		return l.connective(n, label, domain.ConnectiveNand, 0)
	case "xor":
		return l.connective(n, label, domain.ConnectiveXor, 0)
	case "null":
		return l.connective(n, label, domain.ConnectiveNull, 0)
	case "atleast":
		min, err := l.intAttr(n, "min")
		if err != nil {
			return nil, err
		}
		return l.connective(n, label, domain.ConnectiveAtleast, min)
	case "basic-event", "house-event", "gate":
		arg, err := l.parseEventRef(n)
		if err != nil {
			return nil, err
		}
		f, err := domain.NewFormula(label, domain.ConnectiveNull, 0, []domain.Arg{arg})
		return f, attachLocation(err, l.loc(n))
	default:
		return nil, l.errf(n, "unrecognised formula element <%s>", n.Tag)
	}
}

func (l *loader) connective(n *node, label string, conn domain.Connective, minNumber int) (*domain.Formula, error) {
	args := make([]domain.Arg, len(n.Children))
	for i, c := range n.Children {
		a, err := l.parseArg(c, label)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	f, err := domain.NewFormula(label, conn, minNumber, args)
	return f, attachLocation(err, l.loc(n))
}

// parseArg handles one child of an operator element: either an event
// reference or a nested operator, which nests directly without an
// intermediate <formula> wrapper.
func (l *loader) parseArg(n *node, label string) (domain.Arg, error) {
	switch n.Tag {
	case "basic-event", "house-event", "gate":
		return l.parseEventRef(n)
	default:
		nested, err := l.parseFormulaNode(n, label)
		if err != nil {
			return domain.Arg{}, err
		}
		return domain.NestedArg(nested), nil
	}
}

func (l *loader) parseEventRef(n *node) (domain.Arg, error) {
	name, ok := n.attr("name")
	if !ok {
		return domain.Arg{}, l.errf(n, "<%s> requires a name attribute", n.Tag)
	}
	key := dlower(name)
	switch n.Tag {
	case "basic-event":
		b, ok := l.basics[key]
		if !ok {
			return domain.Arg{}, domain.NewUndefinedElement(l.loc(n), name)
		}
		return domain.BasicArg(b), nil
	case "house-event":
		h, ok := l.houses[key]
		if !ok {
			return domain.Arg{}, domain.NewUndefinedElement(l.loc(n), name)
		}
		return domain.HouseArg(h), nil
	case "gate":
		g, ok := l.gates[key]
		if !ok {
			return domain.Arg{}, domain.NewUndefinedElement(l.loc(n), name)
		}
		return domain.GateArg(g), nil
	default:
		return domain.Arg{}, l.errf(n, "unexpected event reference tag <%s>", n.Tag)
	}
}
