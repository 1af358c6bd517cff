package mef

import (
	"io"
	"strconv"
	"strings"

	"github.com/scram-project/scram/internal/domain"
)

// loader carries the lookup tables the two-pass construction needs: every
// identifier must be resolvable before any formula or expression that
// references it is parsed, including forward references within the same
// document.
type loader struct {
	filename    string
	model       *domain.Model
	missionTime *domain.MissionTimeValue

	params map[string]*domain.Parameter
	gates  map[string]*domain.Gate
	basics map[string]*domain.BasicEvent
	houses map[string]*domain.HouseEvent

	basicOrder []*domain.BasicEvent
	houseOrder []*domain.HouseEvent
}

// Load decodes an MEF document from r into a validated-ready domain.Model.
// filename is attached to every diagnostic Location this loader raises; it
// need not be a real path (tests pass a synthetic name for fixtures read
// from memory). The returned MissionTimeValue is the handle every
// system-mission-time expression in the document reads; callers set it from
// config.Settings.MissionTime before running any analysis.
//
// Every fault tree in one document shares the same basic/house event pool
// (spec §6 declares them at the document's model-data level, not nested
// under a single tree), so FaultTree.Orphans() reports orphans against that
// shared pool rather than a tree-exclusive subset.
func Load(r io.Reader, filename string) (*domain.Model, *domain.MissionTimeValue, error) {
	root, err := parseDocument(r)
	if err != nil {
		return nil, nil, domain.NewIOError(domain.Location{File: filename}, err, "failed to parse %s", filename)
	}

	l := &loader{
		filename:    filename,
		model:       domain.NewModel(),
		missionTime: domain.NewMissionTimeValue(0),
		params:      make(map[string]*domain.Parameter),
		gates:       make(map[string]*domain.Gate),
		basics:      make(map[string]*domain.BasicEvent),
		houses:      make(map[string]*domain.HouseEvent),
	}

	if err := l.loadParameters(root); err != nil {
		return nil, nil, err
	}
	if err := l.loadHouseEvents(root); err != nil {
		return nil, nil, err
	}
	if err := l.loadBasicEvents(root); err != nil {
		return nil, nil, err
	}
	trees, err := l.loadFaultTrees(root)
	if err != nil {
		return nil, nil, err
	}
	l.model.Trees = trees
	if err := l.loadCCFGroups(root); err != nil {
		return nil, nil, err
	}

	return l.model, l.missionTime, nil
}

func dlower(s string) string { return strings.ToLower(s) }

func (l *loader) loc(n *node) domain.Location {
	return domain.Location{File: l.filename, Line: n.Line, Func: n.Tag}
}

func (l *loader) errf(n *node, format string, args ...interface{}) error {
	return domain.NewValidationError(l.loc(n), format, args...)
}

// attachLocation fills in loc on err if err is a *domain.Error that was
// raised without one, the common case for domain constructors the loader
// calls (they have no notion of source position of their own).
func attachLocation(err error, loc domain.Location) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*domain.Error); ok && de.Location.File == "" && de.Location.Line == 0 {
		de.Location = loc
	}
	return err
}

func (l *loader) identifierFor(n *node, name string) domain.Identifier {
	isPublic := true
	if role, ok := n.attr("role"); ok && role == "private" {
		isPublic = false
	}
	return domain.NewIdentifier(name, nil, isPublic)
}

// collectDirect gathers n's direct children tagged tag, plus the direct
// children of any <model-data> element among them — the two shapes the
// format allows for top-level declarations.
func (l *loader) collectDirect(root *node, tag string) []*node {
	out := root.childrenTagged(tag)
	for _, md := range root.childrenTagged("model-data") {
		out = append(out, md.childrenTagged(tag)...)
	}
	return out
}

// loadParameters resolves every <define-parameter> in two passes: the first
// registers a placeholder for each name so forward references between
// parameters resolve, the second parses each parameter's real expression.
func (l *loader) loadParameters(root *node) error {
	nodes := l.collectDirect(root, "define-parameter")

	type pending struct {
		n *node
		p *domain.Parameter
	}
	pend := make([]pending, 0, len(nodes))

	for _, n := range nodes {
		name, ok := n.attr("name")
		if !ok {
			return l.errf(n, "<define-parameter> requires a name attribute")
		}
		id := l.identifierFor(n, name)
		unit := domain.UnitUnitless
		if u, ok := n.attr("unit"); ok {
			unit = domain.Unit(u)
		}
		p := domain.NewParameter(id, unit, domain.NewConstant(0))
		if err := attachLocation(l.model.Registry.Register(id, p), l.loc(n)); err != nil {
			return err
		}
		l.params[dlower(name)] = p
		l.model.Parameters = append(l.model.Parameters, p)
		pend = append(pend, pending{n: n, p: p})
	}

	for _, pd := range pend {
		exprs := pd.n.childrenTagged("expression")
		if len(exprs) != 1 {
			return l.errf(pd.n, "<define-parameter> %q requires exactly one <expression> child", pd.p.ID.Name)
		}
		child, err := l.parseExpressionWrapper(exprs[0])
		if err != nil {
			return err
		}
		pd.p.Child = child
		pd.p.InvalidateMean()
	}
	return nil
}

func (l *loader) loadHouseEvents(root *node) error {
	for _, n := range l.collectDirect(root, "define-house-event") {
		name, ok := n.attr("name")
		if !ok {
			return l.errf(n, "<define-house-event> requires a name attribute")
		}
		state := false
		if v, ok := n.attr("value"); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return l.errf(n, "<define-house-event> %q has invalid value %q", name, v)
			}
			state = b
		}
		id := l.identifierFor(n, name)
		h := &domain.HouseEvent{ID: id, State: state}
		if err := attachLocation(l.model.Registry.Register(id, h), l.loc(n)); err != nil {
			return err
		}
		l.houses[dlower(name)] = h
		l.houseOrder = append(l.houseOrder, h)
	}
	return nil
}

func (l *loader) loadBasicEvents(root *node) error {
	for _, n := range l.collectDirect(root, "define-basic-event") {
		name, ok := n.attr("name")
		if !ok {
			return l.errf(n, "<define-basic-event> requires a name attribute")
		}
		id := l.identifierFor(n, name)

		var prob domain.Expression = domain.NewConstant(0)
		exprs := n.childrenTagged("expression")
		switch len(exprs) {
		case 0:
			// Pure CCF-group member: its probability comes entirely from
			// the group's substitution formula once Rewrite runs.
		case 1:
			p, err := l.parseExpressionWrapper(exprs[0])
			if err != nil {
				return err
			}
			prob = p
		default:
			return l.errf(n, "<define-basic-event> %q has more than one <expression> child", name)
		}

		b := &domain.BasicEvent{ID: id, Prob: prob}
		if err := attachLocation(l.model.Registry.Register(id, b), l.loc(n)); err != nil {
			return err
		}
		l.basics[dlower(name)] = b
		l.basicOrder = append(l.basicOrder, b)
	}
	return nil
}

func (l *loader) loadFaultTrees(root *node) ([]*domain.FaultTree, error) {
	var trees []*domain.FaultTree
	for _, n := range root.childrenTagged("define-fault-tree") {
		ft, err := l.loadFaultTree(n)
		if err != nil {
			return nil, err
		}
		trees = append(trees, ft)
	}
	if len(trees) == 0 {
		return nil, l.errf(root, "document declares no <define-fault-tree>")
	}
	return trees, nil
}

func (l *loader) loadFaultTree(n *node) (*domain.FaultTree, error) {
	name, ok := n.attr("name")
	if !ok {
		return nil, l.errf(n, "<define-fault-tree> requires a name attribute")
	}
	id := l.identifierFor(n, name)

	gateNodes := n.childrenTagged("define-gate")
	if len(gateNodes) == 0 {
		return nil, l.errf(n, "fault tree %q declares no gates", name)
	}

	gates := make([]*domain.Gate, 0, len(gateNodes))
	for _, gn := range gateNodes {
		gname, ok := gn.attr("name")
		if !ok {
			return nil, l.errf(gn, "<define-gate> requires a name attribute")
		}
		gid := l.identifierFor(gn, gname)
		g := &domain.Gate{ID: gid}
		if err := attachLocation(l.model.Registry.Register(gid, g), l.loc(gn)); err != nil {
			return nil, err
		}
		l.gates[dlower(gname)] = g
		gates = append(gates, g)
	}

	for i, gn := range gateNodes {
		formulaNodes := gn.childrenTagged("formula")
		if len(formulaNodes) != 1 {
			return nil, l.errf(gn, "<define-gate> %q requires exactly one <formula> child", gates[i].ID.Name)
		}
		f, err := l.parseFormula(formulaNodes[0], gates[i].ID.Name)
		if err != nil {
			return nil, err
		}
		gates[i].Formula = f
	}

	var top *domain.Gate
	if topName, ok := n.attr("top"); ok {
		top, ok = l.gates[dlower(topName)]
		if !ok {
			return nil, domain.NewUndefinedElement(l.loc(n), topName)
		}
	} else {
		top = gates[0]
	}

	return domain.NewFaultTree(id, top, gates, l.basicOrder, l.houseOrder), nil
}

func (l *loader) loadCCFGroups(root *node) error {
	for _, n := range root.childrenTagged("define-CCF-group") {
		name, ok := n.attr("name")
		if !ok {
			return l.errf(n, "<define-CCF-group> requires a name attribute")
		}
		modelAttr, ok := n.attr("model")
		if !ok {
			return l.errf(n, "<define-CCF-group> %q requires a model attribute", name)
		}
		id := l.identifierFor(n, name)

		membersNodes := n.childrenTagged("members")
		if len(membersNodes) != 1 {
			return l.errf(n, "<define-CCF-group> %q requires exactly one <members> element", name)
		}
		var members []*domain.BasicEvent
		for _, ref := range membersNodes[0].childrenTagged("basic-event") {
			mname, ok := ref.attr("name")
			if !ok {
				return l.errf(ref, "<basic-event> member reference requires a name attribute")
			}
			b, ok := l.basics[dlower(mname)]
			if !ok {
				return domain.NewUndefinedElement(l.loc(ref), mname)
			}
			members = append(members, b)
		}

		distNodes := n.childrenTagged("distribution")
		if len(distNodes) != 1 {
			return l.errf(n, "<define-CCF-group> %q requires exactly one <distribution> element", name)
		}
		distExprs := distNodes[0].childrenTagged("expression")
		if len(distExprs) != 1 {
			return l.errf(distNodes[0], "<distribution> requires exactly one <expression> child")
		}
		qtotal, err := l.parseExpressionWrapper(distExprs[0])
		if err != nil {
			return err
		}

		var factors []domain.Expression
		for _, factorsNode := range n.childrenTagged("factors") {
			for _, fn := range factorsNode.childrenTagged("factor") {
				fexprs := fn.childrenTagged("expression")
				if len(fexprs) != 1 {
					return l.errf(fn, "<factor> requires exactly one <expression> child")
				}
				fe, err := l.parseExpressionWrapper(fexprs[0])
				if err != nil {
					return err
				}
				factors = append(factors, fe)
			}
		}

		group := &domain.CCFGroup{
			ID:      id,
			Model:   domain.CCFModel(modelAttr),
			Members: members,
			Qtotal:  qtotal,
			Factors: factors,
		}
		if err := attachLocation(l.model.Registry.Register(id, group), l.loc(n)); err != nil {
			return err
		}
		l.model.CCFGroups = append(l.model.CCFGroups, group)

		for _, ft := range l.model.Trees {
			before := len(ft.BasicEvents)
			if err := group.Rewrite(ft); err != nil {
				return attachLocation(err, l.loc(n))
			}
			// Register the synthesised CcfEvents once so the validator's
			// referential-integrity step resolves them like any other event.
			for _, b := range ft.BasicEvents[before:] {
				if _, ok := l.model.Registry.Lookup(b.ID.ID, b.ID.BasePath, b.ID.IsPublic); ok {
					continue
				}
				if err := attachLocation(l.model.Registry.Register(b.ID, b), l.loc(n)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
