package domain

// color is a DFS visitation state: White (unvisited), Gray (on the current
// recursion stack) or Black (fully explored). A Gray node re-encountered
// during the walk closes a cycle.
type color int

const (
	white color = iota
	gray
	black
)

// collectParamRefs returns the *Parameter nodes directly reachable from e
// without passing through another *Parameter along the way — the direct
// edges of the parameter dependency graph. Parameters nested beneath a
// found Parameter are that parameter's own edges, discovered when the walk
// visits it in turn.
func collectParamRefs(e Expression) []*Parameter {
	var refs []*Parameter
	var walk func(n Expression)
	walk = func(n Expression) {
		if p, ok := n.(*Parameter); ok {
			refs = append(refs, p)
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, c := range e.Children() {
		walk(c)
	}
	return refs
}

// ParameterGraph is the dependency graph over a model's parameters, built
// from each Parameter's Child expression. CheckAcyclic performs a
// three-colour DFS and raises CycleError naming the full cycle, in
// traversal order, on the first one found.
type ParameterGraph struct {
	params []*Parameter
}

// NewParameterGraph builds a graph over params.
func NewParameterGraph(params []*Parameter) *ParameterGraph {
	return &ParameterGraph{params: append([]*Parameter(nil), params...)}
}

// CheckAcyclic walks every parameter and fails on the first cycle found.
func (g *ParameterGraph) CheckAcyclic() error {
	colors := make(map[*Parameter]color, len(g.params))
	for _, p := range g.params {
		colors[p] = white
	}
	var path []*Parameter
	var visit func(p *Parameter) error
	visit = func(p *Parameter) error {
		switch colors[p] {
		case black:
			return nil
		case gray:
			cycle := cycleFrom(path, p)
			return NewCycleError(Location{}, namesOf(cycle))
		}
		colors[p] = gray
		path = append(path, p)
		for _, dep := range collectParamRefs(p) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		colors[p] = black
		return nil
	}
	for _, p := range g.params {
		if colors[p] == white {
			if err := visit(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleFrom extracts the suffix of path starting at the first occurrence of
// target, plus target itself again to show the closing edge.
func cycleFrom(path []*Parameter, target *Parameter) []*Parameter {
	for i, p := range path {
		if p == target {
			cyc := append([]*Parameter(nil), path[i:]...)
			return append(cyc, target)
		}
	}
	return append([]*Parameter(nil), target)
}

func namesOf(params []*Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.ID.Name
	}
	return out
}
