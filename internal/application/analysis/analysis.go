package analysis

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/scram-project/scram/internal/domain"
)

// CycleHandle tags one sampling cycle for log correlation. The coherence
// guarantee it sounds like it should provide actually comes from the
// per-expression memoisation in domain's Expression implementations; the
// UUID here is purely a correlation id threaded through logs (grounded on
// the teacher's use of google/uuid for execution/run identifiers).
type CycleHandle struct {
	ID  uuid.UUID
	rng *rand.Rand
}

// Rand returns the rng backing this cycle's draws.
func (c *CycleHandle) Rand() *rand.Rand { return c.rng }

// Analysis is the read-only façade over a validated model: it owns no
// algorithm of its own beyond sampling-cycle bookkeeping and mission-time
// threading, deferring the top-event, importance and uncertainty
// computations to injected evaluators.
type Analysis struct {
	Model       *domain.Model
	MissionTime *domain.MissionTimeValue
	Top         TopEventEvaluator
	Importance_ ImportanceEvaluator
	Uncertainty UncertaintyEvaluator

	cycle *CycleHandle
}

// New builds a façade over model, with the given mission-time handle and
// whichever evaluators the caller has wired. Evaluators may be nil; calling
// the method that needs a nil one returns domain.KindIllegalOperation.
func New(model *domain.Model, missionTime *domain.MissionTimeValue, top TopEventEvaluator,
	imp ImportanceEvaluator, unc UncertaintyEvaluator) *Analysis {
	return &Analysis{Model: model, MissionTime: missionTime, Top: top, Importance_: imp, Uncertainty: unc}
}

// BeginSamplingCycle seeds a fresh rng and opens a cycle; it is an error to
// begin one while another is still open (spec §5: sampling cycles are
// serialised, never nested).
func (a *Analysis) BeginSamplingCycle(seed int64) (*CycleHandle, error) {
	if a.cycle != nil {
		return nil, domain.NewIllegalOperation(domain.Location{}, "sampling cycle %s is still open", a.cycle.ID)
	}
	a.cycle = &CycleHandle{ID: uuid.New(), rng: rand.New(rand.NewSource(seed))}
	return a.cycle, nil
}

// EndSamplingCycle clears every memoised draw across the whole model,
// tearing the cycle down so the next BeginSamplingCycle starts clean.
func (a *Analysis) EndSamplingCycle() error {
	if a.cycle == nil {
		return domain.NewIllegalOperation(domain.Location{}, "no sampling cycle is open")
	}
	a.resetAll()
	a.cycle = nil
	return nil
}

// Reset clears every memoised draw without requiring an open cycle; a bulk
// reset callers use between independent analyses.
func (a *Analysis) Reset() {
	a.resetAll()
	a.cycle = nil
}

func (a *Analysis) resetAll() {
	for _, p := range a.Model.Parameters {
		p.Reset()
	}
	for _, ft := range a.Model.Trees {
		for _, b := range ft.BasicEvents {
			b.Prob.Reset()
		}
	}
}

// ProbabilityAt moves the mission-time handle to t and invalidates every
// parameter's cached mean, since any of them may transitively read mission
// time (spec §5: mission time is process-wide and read-only during a run,
// but re-architected here as an explicit value the façade owns and mutates
// between evaluations, never mid-cycle).
func (a *Analysis) ProbabilityAt(ft *domain.FaultTree, t float64) (float64, error) {
	if a.Top == nil {
		return 0, domain.NewIllegalOperation(domain.Location{}, "no TopEventEvaluator wired")
	}
	a.MissionTime.Set(t)
	for _, p := range a.Model.Parameters {
		p.InvalidateMean()
	}
	return a.Top.Probability(ft)
}
