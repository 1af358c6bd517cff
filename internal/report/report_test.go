package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scram-project/scram/internal/application/analysis"
	"github.com/scram-project/scram/internal/domain"
)

func TestWrite_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Report{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, buf.String(), "<scram-report></scram-report>")
}

func TestWrite_FullReport(t *testing.T) {
	r := Report{
		Trees: []TreeResult{
			{
				Name:           "Top",
				TopProbability: 0.02,
				Products: []Product{
					{Events: []string{"a", "b"}},
				},
				Importance: []EventImportance{
					{EventID: "a", FV: 1.0, Birnbaum: 0.2, CIF: 0.1, DIF: 0.05, RAW: 10, RRW: 1},
				},
				Uncertainty: &Uncertainty{
					Mean:   0.02,
					StdDev: 0.001,
					Percentile: []Percentile{
						{Level: 0.05, Value: 0.018},
						{Level: 0.95, Value: 0.022},
					},
				},
				SIL: &SILResult{PFDavg: 0.02, PFH: 1e-6, Band: "SIL2"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))

	out := buf.String()
	assert.Contains(t, out, `name="Top"`)
	assert.Contains(t, out, "<top-probability>0.02</top-probability>")
	assert.Contains(t, out, `<event id="a">`)
	assert.Contains(t, out, "<band>SIL2</band>")
}

func newBasicEvent(t *testing.T, id string, prob float64) *domain.BasicEvent {
	t.Helper()
	return &domain.BasicEvent{ID: domain.NewIdentifier(id, nil, true), Prob: domain.NewConstant(prob)}
}

func TestBuildImportance_DerivesCIFAndDIF(t *testing.T) {
	a := newBasicEvent(t, "a", 0.1)
	b := newBasicEvent(t, "b", 0.2)
	ft := domain.NewFaultTree(domain.NewIdentifier("Top", nil, true), nil, nil, []*domain.BasicEvent{a, b}, nil)

	items := []analysis.Importance{
		{EventID: "a", FV: 1.0, Birnbaum: 0.2, RAW: 10, RRW: 1},
	}

	out, err := BuildImportance(ft, items, 0.02)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].EventID)
	assert.InDelta(t, 1.0, out[0].CIF, 1e-12) // 0.2*0.1/0.02
	assert.InDelta(t, 5.0, out[0].DIF, 1e-12) // 10*0.1/0.02
}

func TestBuildImportance_ZeroTopProbabilityLeavesDerivedFieldsZero(t *testing.T) {
	a := newBasicEvent(t, "a", 0.1)
	ft := domain.NewFaultTree(domain.NewIdentifier("Top", nil, true), nil, nil, []*domain.BasicEvent{a}, nil)

	items := []analysis.Importance{{EventID: "a"}}
	out, err := BuildImportance(ft, items, 0)
	require.NoError(t, err)
	assert.Zero(t, out[0].CIF)
	assert.Zero(t, out[0].DIF)
}

func TestBuildUncertainty_KeepsOnlyKnownPercentiles(t *testing.T) {
	summary := analysis.UncertaintySummary{
		Mean:   0.5,
		StdDev: 0.01,
		Percentile: map[float64]float64{
			0.05: 0.4,
			0.95: 0.6,
		},
		Histogram: []float64{0.4, 0.5, 0.6},
	}

	u := BuildUncertainty(summary)
	require.Len(t, u.Percentile, 2)
	assert.Equal(t, 0.05, u.Percentile[0].Level)
	assert.Equal(t, 0.4, u.Percentile[0].Value)
	assert.Equal(t, 0.95, u.Percentile[1].Level)
	assert.Equal(t, 0.6, u.Percentile[1].Value)
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, u.Histogram)
}
