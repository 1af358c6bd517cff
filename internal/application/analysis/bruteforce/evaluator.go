// Package bruteforce is a reference TopEventEvaluator: a full truth-table
// enumeration over a fault tree's basic events. It exists only for this
// module's own tests and the CLI demo path, capped at a small event count —
// never a production solver (spec §4.I explicitly leaves BDD/ZBDD out of
// scope and this is its stand-in collaborator).
package bruteforce

import (
	"github.com/scram-project/scram/internal/domain"
)

// MaxEvents bounds the truth table this evaluator will build: 2^MaxEvents
// rows. Anything larger belongs to a real solver, not this reference one.
const MaxEvents = 22

// Evaluator enumerates every combination of basic-event states and sums the
// probability mass of the combinations under which the top event is true.
type Evaluator struct{}

// New builds a bruteforce.Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Probability implements analysis.TopEventEvaluator.
func (e *Evaluator) Probability(ft *domain.FaultTree) (float64, error) {
	basics := ft.BasicEvents
	n := len(basics)
	if n > MaxEvents {
		return 0, domain.NewIllegalOperation(domain.Location{}, "bruteforce evaluator capped at %d basic events, tree has %d", MaxEvents, n)
	}
	if ft.Top == nil {
		return 0, domain.NewValidationError(domain.Location{}, "fault tree %q has no top gate", ft.ID.Name)
	}

	probs := make([]float64, n)
	for i, b := range basics {
		p, err := b.Prob.Mean()
		if err != nil {
			return 0, err
		}
		probs[i] = p
	}

	total := 0.0
	rows := uint64(1) << uint(n)
	for mask := uint64(0); mask < rows; mask++ {
		weight := 1.0
		assign := make(map[string]bool, n)
		for i, b := range basics {
			up := mask&(1<<uint(i)) != 0
			assign[b.ID.ID] = up
			if up {
				weight *= probs[i]
			} else {
				weight *= 1 - probs[i]
			}
			if weight == 0 {
				break
			}
		}
		if weight == 0 {
			continue
		}
		truth, err := ft.Top.Formula.Evaluate(evalWith(assign))
		if err != nil {
			return 0, err
		}
		if truth {
			total += weight
		}
	}
	return total, nil
}

// evalWith builds the domain.Event evaluator closure bruteforce needs:
// basic events resolve from the row's assignment, house events resolve to
// their fixed state, and gates recurse into their own formula.
func evalWith(assign map[string]bool) func(domain.Event) (bool, error) {
	var eval func(domain.Event) (bool, error)
	eval = func(ev domain.Event) (bool, error) {
		switch e := ev.(type) {
		case *domain.BasicEvent:
			return assign[e.ID.ID], nil
		case *domain.HouseEvent:
			return e.State, nil
		case *domain.Gate:
			return e.Formula.Evaluate(eval)
		default:
			return false, domain.NewLogicError(domain.Location{}, "unrecognised event type in formula evaluation")
		}
	}
	return eval
}
