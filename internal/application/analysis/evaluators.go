// Package analysis hosts the read-only façade over a validated domain.Model:
// sampling-cycle coherence, time-integrated probability and the SIL
// approximations from IEC 61508. The heavy algorithms it depends on — the
// BDD/ZBDD top-event solver, importance ranking, uncertainty propagation —
// are injected collaborators this module does not implement; see
// DESIGN.md.
package analysis

import "github.com/scram-project/scram/internal/domain"

// TopEventEvaluator computes the top event's failure probability for a
// validated fault tree. Production callers inject a BDD/ZBDD/MOCUS solver;
// this module ships only bruteforce.Evaluator as a reference stand-in.
type TopEventEvaluator interface {
	Probability(ft *domain.FaultTree) (float64, error)
}

// Importance is one event's contribution measures (spec §3): Fussell-Vesely,
// risk achievement/reduction worth, and birnbaum importance.
type Importance struct {
	EventID string
	FV      float64
	RAW     float64
	RRW     float64
	Birnbaum float64
}

// ImportanceEvaluator ranks every basic event's contribution to the top
// event's probability.
type ImportanceEvaluator interface {
	Importance(ft *domain.FaultTree, topProbability float64) ([]Importance, error)
}

// UncertaintySummary is the Monte-Carlo propagation result for one query.
type UncertaintySummary struct {
	Mean       float64
	StdDev     float64
	Percentile map[float64]float64 // e.g. 0.05 -> lower bound, 0.95 -> upper bound
	Histogram  []float64           // raw per-trial top-event samples, for report writers
}

// UncertaintyEvaluator runs NumTrials sampling cycles through rng and
// summarises the resulting distribution of top-event probabilities.
type UncertaintyEvaluator interface {
	Propagate(ft *domain.FaultTree, numTrials int, seed int64) (UncertaintySummary, error)
}
