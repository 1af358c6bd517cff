package domain

// FaultTree is the named container for one tree's gates and primary
// events, rooted at Top. Orphan tracking follows spec §4.F: after
// construction, every event reachable from no gate's formula is flagged,
// a diagnostic rather than a validation failure.
type FaultTree struct {
	ID          Identifier
	Top         *Gate
	Gates       []*Gate
	BasicEvents []*BasicEvent
	HouseEvents []*HouseEvent
	orphans     map[string]bool
}

// NewFaultTree builds a container over the given elements and computes
// orphan status immediately.
func NewFaultTree(id Identifier, top *Gate, gates []*Gate, basics []*BasicEvent, houses []*HouseEvent) *FaultTree {
	ft := &FaultTree{
		ID:          id,
		Top:         top,
		Gates:       gates,
		BasicEvents: basics,
		HouseEvents: houses,
	}
	ft.computeOrphans()
	return ft
}

func (ft *FaultTree) computeOrphans() {
	referenced := make(map[string]bool)
	var walk func(f *Formula)
	walk = func(f *Formula) {
		for _, a := range f.Args {
			switch {
			case a.House != nil:
				referenced[a.House.ID.ID] = true
			case a.Basic != nil:
				referenced[a.Basic.ID.ID] = true
			case a.Gate != nil:
				referenced[a.Gate.ID.ID] = true
			case a.Nested != nil:
				walk(a.Nested)
			}
		}
	}
	if ft.Top != nil {
		walk(ft.Top.Formula)
	}
	for _, g := range ft.Gates {
		if g != ft.Top {
			walk(g.Formula)
		}
	}

	orphans := make(map[string]bool)
	for _, g := range ft.Gates {
		if g != ft.Top && !referenced[g.ID.ID] {
			orphans[g.ID.ID] = true
		}
	}
	for _, b := range ft.BasicEvents {
		if !referenced[b.ID.ID] {
			orphans[b.ID.ID] = true
		}
	}
	for _, h := range ft.HouseEvents {
		if !referenced[h.ID.ID] {
			orphans[h.ID.ID] = true
		}
	}
	ft.orphans = orphans
}

// IsOrphan reports whether id names an event unreferenced by any gate's
// formula in this tree, the top gate aside.
func (ft *FaultTree) IsOrphan(id string) bool { return ft.orphans[id] }

// Orphans returns every orphaned identifier, in no particular order.
func (ft *FaultTree) Orphans() []string {
	out := make([]string, 0, len(ft.orphans))
	for id := range ft.orphans {
		out = append(out, id)
	}
	return out
}

// GateGraph exposes the gate-to-gate reference structure for the
// validator's acyclicity check (spec §4.H step 2): g depends on every gate
// its formula references, directly or through nested sub-formulae.
func (ft *FaultTree) GateGraph() map[*Gate][]*Gate {
	out := make(map[*Gate][]*Gate, len(ft.Gates)+1)
	collect := func(f *Formula) []*Gate {
		var gates []*Gate
		var walk func(f *Formula)
		walk = func(f *Formula) {
			for _, a := range f.Args {
				switch {
				case a.Gate != nil:
					gates = append(gates, a.Gate)
				case a.Nested != nil:
					walk(a.Nested)
				}
			}
		}
		walk(f)
		return gates
	}
	all := append([]*Gate(nil), ft.Gates...)
	if ft.Top != nil {
		found := false
		for _, g := range all {
			if g == ft.Top {
				found = true
				break
			}
		}
		if !found {
			all = append(all, ft.Top)
		}
	}
	for _, g := range all {
		out[g] = collect(g.Formula)
	}
	return out
}
