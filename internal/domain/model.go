package domain

// Model is the fully assembled in-memory representation the MEF loader
// builds and the Analysis façade reads: every fault tree, every parameter
// and every CCF group registered under one shared Registry.
type Model struct {
	Registry   *Registry
	Trees      []*FaultTree
	Parameters []*Parameter
	CCFGroups  []*CCFGroup
}

// NewModel builds an empty model with a fresh registry.
func NewModel() *Model {
	return &Model{Registry: NewRegistry()}
}

// Validate runs the fixed six-step validation sequence from spec §4.H,
// stopping at the first failure: referential integrity, gate-graph
// acyclicity, parameter-graph acyclicity, formula well-formedness,
// probability-range checks and CCF-group consistency.
func (m *Model) Validate() error {
	steps := []func() error{
		m.checkReferentialIntegrity,
		m.checkGateAcyclicity,
		m.checkParameterAcyclicity,
		m.checkFormulae,
		m.checkProbabilityRanges,
		m.checkCCFGroups,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// checkReferentialIntegrity confirms every event a formula references
// resolves in the model's registry; an id that resolves to nothing
// surfaces as UndefinedElement.
func (m *Model) checkReferentialIntegrity() error {
	for _, ft := range m.Trees {
		var walk func(f *Formula) error
		walk = func(f *Formula) error {
			for _, a := range f.Args {
				if a.Nested != nil {
					if err := walk(a.Nested); err != nil {
						return err
					}
					continue
				}
				id := a.eventID()
				if id == "" {
					continue
				}
				if _, ok := m.Registry.Lookup(id, ft.ID.BasePath, true); !ok {
					if _, ok := m.Registry.Lookup(id, ft.ID.BasePath, false); !ok {
						return NewUndefinedElement(Location{}, id)
					}
				}
			}
			return nil
		}
		if ft.Top != nil {
			if err := walk(ft.Top.Formula); err != nil {
				return err
			}
		}
		for _, g := range ft.Gates {
			if g == ft.Top {
				continue
			}
			if err := walk(g.Formula); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkGateAcyclicity runs the three-colour DFS over every tree's gate
// graph, the same algorithm the parameter graph uses (spec §9).
func (m *Model) checkGateAcyclicity() error {
	for _, ft := range m.Trees {
		graph := ft.GateGraph()
		colors := make(map[*Gate]color, len(graph))
		for g := range graph {
			colors[g] = white
		}
		var path []*Gate
		var visit func(g *Gate) error
		visit = func(g *Gate) error {
			switch colors[g] {
			case black:
				return nil
			case gray:
				cyc := gateCycleFrom(path, g)
				return NewCycleError(Location{}, gateNamesOf(cyc))
			}
			colors[g] = gray
			path = append(path, g)
			for _, dep := range graph[g] {
				if err := visit(dep); err != nil {
					return err
				}
			}
			path = path[:len(path)-1]
			colors[g] = black
			return nil
		}
		for g := range graph {
			if colors[g] == white {
				if err := visit(g); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func gateCycleFrom(path []*Gate, target *Gate) []*Gate {
	for i, g := range path {
		if g == target {
			cyc := append([]*Gate(nil), path[i:]...)
			return append(cyc, target)
		}
	}
	return append([]*Gate(nil), target)
}

func gateNamesOf(gates []*Gate) []string {
	out := make([]string, len(gates))
	for i, g := range gates {
		out[i] = g.ID.Name
	}
	return out
}

func (m *Model) checkParameterAcyclicity() error {
	return NewParameterGraph(m.Parameters).CheckAcyclic()
}

// checkFormulae re-validates every formula's arity and duplicate-argument
// rule; this repeats work NewFormula already did at construction, but a
// formula assembled by the MEF loader through intermediate mutable state
// may not have gone through that constructor for every node, so this is
// the authoritative, final check.
func (m *Model) checkFormulae() error {
	for _, ft := range m.Trees {
		var walk func(f *Formula) error
		walk = func(f *Formula) error {
			if _, err := NewFormula(ft.ID.Name, f.Connective, f.MinNumber, f.Args); err != nil {
				return err
			}
			for _, a := range f.Args {
				if a.Nested != nil {
					if err := walk(a.Nested); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if ft.Top != nil {
			if err := walk(ft.Top.Formula); err != nil {
				return err
			}
		}
		for _, g := range ft.Gates {
			if g == ft.Top {
				continue
			}
			if err := walk(g.Formula); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkProbabilityRanges confirms every basic event's expression has
// analytic support inside [0, 1].
func (m *Model) checkProbabilityRanges() error {
	for _, ft := range m.Trees {
		for _, b := range ft.BasicEvents {
			lo, err := b.Prob.Min()
			if err != nil {
				return err
			}
			hi, err := b.Prob.Max()
			if err != nil {
				return err
			}
			if lo < 0 || hi > 1 {
				return NewValidationError(Location{}, "basic event %q probability support [%g, %g] outside [0, 1]",
					b.ID.Name, lo, hi)
			}
		}
	}
	return nil
}

// checkCCFGroups confirms every group has at least two members and
// that its factor count matches its model, by attempting a Derive (whose
// own validation covers exactly those rules) and discarding the result.
func (m *Model) checkCCFGroups() error {
	for _, g := range m.CCFGroups {
		if _, _, err := g.Derive(); err != nil {
			return err
		}
	}
	return nil
}
