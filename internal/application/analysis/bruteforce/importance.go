package bruteforce

import (
	"github.com/scram-project/scram/internal/domain"

	"github.com/scram-project/scram/internal/application/analysis"
)

// probabilityWithOverride re-runs the truth-table sum with basics[index]'s
// probability pinned to forced instead of its own Mean(), leaving every
// other basic event's probability untouched. Used to compute Birnbaum/RAW/
// RRW/Fussell-Vesely without mutating the model.
func probabilityWithOverride(ft *domain.FaultTree, index int, forced float64) (float64, error) {
	basics := ft.BasicEvents
	n := len(basics)
	if n > MaxEvents {
		return 0, domain.NewIllegalOperation(domain.Location{}, "bruteforce evaluator capped at %d basic events, tree has %d", MaxEvents, n)
	}
	probs := make([]float64, n)
	for i, b := range basics {
		if i == index {
			probs[i] = forced
			continue
		}
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

// ImportanceEvaluator is the reference bruteforce.Evaluator's
// analysis.ImportanceEvaluator implementation: it recomputes the full
// truth-table sum once per basic event per bound, so it shares the same
// event-count cap as Probability.
type ImportanceEvaluator struct{}

// NewImportanceEvaluator builds a bruteforce ImportanceEvaluator.
func NewImportanceEvaluator() *ImportanceEvaluator { return &ImportanceEvaluator{} }

func (e *ImportanceEvaluator) Importance(ft *domain.FaultTree, topProbability float64) ([]analysis.Importance, error) {
	out := make([]analysis.Importance, len(ft.BasicEvents))
	for i, b := range ft.BasicEvents {
		up, err := probabilityWithOverride(ft, i, 1)
		if err != nil {
			return nil, err
		}
		down, err := probabilityWithOverride(ft, i, 0)
		if err != nil {
			return nil, err
		}
		imp := analysis.Importance{EventID: b.ID.ID, Birnbaum: up - down}
		if topProbability > 0 {
			imp.FV = (topProbability - down) / topProbability
			imp.RAW = up / topProbability
		}
		if down > 0 {
			imp.RRW = topProbability / down
		}
		out[i] = imp
	}
	return out, nil
}
