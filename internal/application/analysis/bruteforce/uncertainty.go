package bruteforce

import (
	"math/rand"

	"github.com/montanaflynn/stats"

	"github.com/scram-project/scram/internal/application/analysis"
	"github.com/scram-project/scram/internal/domain"
)

// UncertaintyEvaluator runs a two-phase Monte Carlo propagation: each trial
// draws one coherent sample from every basic event's probability
// expression (the epistemic draw), then sums the exact truth table using
// those drawn point values (the aleatory combination) — the same
// combinatorial core as Evaluator.Probability, but over Sample() instead of
// Mean(). Summary statistics come from github.com/montanaflynn/stats,
// mirroring how the pack's own statistics layer is built.
type UncertaintyEvaluator struct{}

// NewUncertaintyEvaluator builds a bruteforce UncertaintyEvaluator.
func NewUncertaintyEvaluator() *UncertaintyEvaluator { return &UncertaintyEvaluator{} }

func (e *UncertaintyEvaluator) Propagate(ft *domain.FaultTree, numTrials int, seed int64) (analysis.UncertaintySummary, error) {
	basics := ft.BasicEvents
	n := len(basics)
	if n > MaxEvents {
		return analysis.UncertaintySummary{}, domain.NewIllegalOperation(domain.Location{},
			"bruteforce evaluator capped at %d basic events, tree has %d", MaxEvents, n)
	}
	if numTrials <= 0 {
		return analysis.UncertaintySummary{}, domain.NewInvalidArgument(domain.Location{}, "numTrials must be positive, got %d", numTrials)
	}

	rng := rand.New(rand.NewSource(seed))
	samples := make([]float64, numTrials)
	for trial := 0; trial < numTrials; trial++ {
		probs := make([]float64, n)
		for i, b := range basics {
			p, err := b.Prob.Sample(rng)
			if err != nil {
				return analysis.UncertaintySummary{}, err
			}
			probs[i] = p
		}
		for _, p := range basics {
			p.Prob.Reset()
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
				return analysis.UncertaintySummary{}, err
			}
			if truth {
				total += weight
			}
		}
		samples[trial] = total
	}

	mean, err := stats.Mean(samples)
	if err != nil {
		return analysis.UncertaintySummary{}, err
	}
	stddev, err := stats.StandardDeviation(samples)
	if err != nil {
		return analysis.UncertaintySummary{}, err
	}
	p05, err := stats.Percentile(samples, 5)
	if err != nil {
		return analysis.UncertaintySummary{}, err
	}
	p95, err := stats.Percentile(samples, 95)
	if err != nil {
		return analysis.UncertaintySummary{}, err
	}

	return analysis.UncertaintySummary{
		Mean:   mean,
		StdDev: stddev,
		Percentile: map[float64]float64{
			0.05: p05,
			0.95: p95,
		},
		Histogram: samples,
	}, nil
}
