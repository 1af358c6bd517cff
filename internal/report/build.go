package report

import (
	"github.com/scram-project/scram/internal/application/analysis"
	"github.com/scram-project/scram/internal/domain"
)

// BuildImportance turns the evaluator's FV/RAW/RRW/Birnbaum output into the
// report's full six-factor shape, deriving CIF and DIF from each basic
// event's own mean probability: CIF is the Birnbaum importance weighted by
// the event's own contribution to the top event, DIF is the conditional
// probability that the event is the one at fault given the top event
// occurred.
func BuildImportance(ft *domain.FaultTree, items []analysis.Importance, topProbability float64) ([]EventImportance, error) {
	ownProb := make(map[string]float64, len(ft.BasicEvents))
	for _, b := range ft.BasicEvents {
		p, err := b.Prob.Mean()
		if err != nil {
			return nil, err
		}
		ownProb[b.ID.ID] = p
	}

	out := make([]EventImportance, len(items))
	for i, imp := range items {
		q := ownProb[imp.EventID]
		ei := EventImportance{
			EventID:  imp.EventID,
			FV:       imp.FV,
			Birnbaum: imp.Birnbaum,
			RAW:      imp.RAW,
			RRW:      imp.RRW,
		}
		if topProbability > 0 {
			ei.CIF = imp.Birnbaum * q / topProbability
			ei.DIF = imp.RAW * q / topProbability
		}
		out[i] = ei
	}
	return out, nil
}

// BuildUncertainty adapts an analysis.UncertaintySummary into the report's
// shape, fixing the percentile iteration order so repeated runs over the
// same summary produce byte-identical XML.
func BuildUncertainty(summary analysis.UncertaintySummary) Uncertainty {
	u := Uncertainty{
		Mean:      summary.Mean,
		StdDev:    summary.StdDev,
		Histogram: summary.Histogram,
	}
	levels := []float64{0.05, 0.95}
	for _, level := range levels {
		if v, ok := summary.Percentile[level]; ok {
			u.Percentile = append(u.Percentile, Percentile{Level: level, Value: v})
		}
	}
	return u
}
