// Package report serializes one analysis run into the XML report
// document spec §6 describes: per fault tree, its minimal cut sets, top
// event probability, per-event importance factors, an uncertainty
// summary and a SIL table. Like internal/mef's decoder, there is no
// third-party XML library in the retrieval pack to reach for here, so
// this goes through the standard library's encoding/xml; see DESIGN.md.
package report

import (
	"encoding/xml"
	"io"
)

// Report is the root document: one result per analyzed fault tree.
type Report struct {
	XMLName xml.Name    `xml:"scram-report"`
	Trees   []TreeResult `xml:"fault-tree"`
}

// TreeResult is everything this module computed for one fault tree.
type TreeResult struct {
	Name            string            `xml:"name,attr"`
	TopProbability  float64           `xml:"top-probability"`
	Products        []Product         `xml:"products>product,omitempty"`
	Importance      []EventImportance `xml:"importance>event,omitempty"`
	Uncertainty     *Uncertainty      `xml:"uncertainty,omitempty"`
	SIL             *SILResult        `xml:"sil,omitempty"`
}

// Product is one minimal cut set: the basic/house event ids whose
// simultaneous occurrence is sufficient for the top event. Order is the
// order the solver that found it returned them in.
type Product struct {
	Events []string `xml:"event"`
}

// EventImportance carries every factor spec §6 lists for one basic event.
// CIF and DIF are derived from Birnbaum/RAW and the event's own mean
// probability (see BuildImportance); they are not evaluator outputs themselves,
// since analysis.Importance only covers FV/RAW/RRW/Birnbaum (spec §3).
type EventImportance struct {
	EventID  string  `xml:"id,attr"`
	FV       float64 `xml:"fussell-vesely"`
	Birnbaum float64 `xml:"birnbaum"`
	CIF      float64 `xml:"cif"`
	DIF      float64 `xml:"dif"`
	RAW      float64 `xml:"raw"`
	RRW      float64 `xml:"rrw"`
}

// Uncertainty is the Monte-Carlo propagation summary for one fault tree's
// top-event probability.
type Uncertainty struct {
	Mean       float64      `xml:"mean"`
	StdDev     float64      `xml:"std-dev"`
	Percentile []Percentile `xml:"percentile"`
	Histogram  []float64    `xml:"histogram>sample,omitempty"`
}

// Percentile is one named quantile of the uncertainty distribution, e.g.
// Level 0.05 -> the 5th percentile bound.
type Percentile struct {
	Level float64 `xml:"level,attr"`
	Value float64 `xml:",chardata"`
}

// SILResult is the IEC 61508 time-integrated evaluation for one fault tree.
type SILResult struct {
	PFDavg float64 `xml:"pfd-avg"`
	PFH    float64 `xml:"pfh"`
	Band   string  `xml:"band,omitempty"`
}

// Write marshals r as an indented XML document with the standard header,
// mirroring how the domain's own error diagnostics favour plain, inspectable
// text over a binary or templated format.
func Write(w io.Writer, r Report) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n"))
	return err
}
