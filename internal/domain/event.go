package domain

// Event is anything a Formula can reference as an argument: a house event,
// a basic event (including one synthesised by a CCF group) or a gate.
type Event interface {
	EventID() Identifier
}

// PrimaryEvent marks the leaves of the fault tree: house and basic events,
// the ones that never recurse into a Formula.
type PrimaryEvent interface {
	Event
	primaryEvent()
}

// HouseEvent is a boolean constant: always true, always false, or toggled
// to explore a configuration (spec §3).
type HouseEvent struct {
	ID    Identifier
	State bool
}

func (h *HouseEvent) EventID() Identifier { return h.ID }
func (h *HouseEvent) primaryEvent()       {}

// BasicEvent is a leaf with a failure probability or rate expression.
type BasicEvent struct {
	ID   Identifier
	Prob Expression
}

func (b *BasicEvent) EventID() Identifier { return b.ID }
func (b *BasicEvent) primaryEvent()       {}

// Gate is an internal node: its Formula combines other events (or nested
// formulae) into a single Boolean condition.
type Gate struct {
	ID      Identifier
	Formula *Formula
}

func (g *Gate) EventID() Identifier { return g.ID }

// CcfEvent is a basic event synthesised by a CCF group's rewriting
// (spec §4.G): its Prob is derived from the group's model rather than
// asserted directly, and Members records which original basic events it
// stands in for in the substitution formula.
type CcfEvent struct {
	BasicEvent
	Group   *CCFGroup
	Members []*BasicEvent
}
