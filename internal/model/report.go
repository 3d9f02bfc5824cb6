package model

import "time"

// Recommendation is the final verdict for a location.
type Recommendation string

const (
	RecommendGo           Recommendation = "go"
	RecommendNoGo         Recommendation = "no-go"
	RecommendInconclusive Recommendation = "inconclusive"
)

// Report is the terminal artifact of a pipeline run. It references exactly
// one GeoPoint and at most one instance of each findings type; a nil
// findings pointer means that analyzer produced nothing (see Missing).
type Report struct {
	RunID        string               `json:"run_id"`
	Query        string               `json:"query"`
	Point        GeoPoint             `json:"point"`
	Demographics *DemographicFindings `json:"demographics,omitempty"`
	Competition  *CompetitionFindings `json:"competition,omitempty"`
	Gaps         *GapFindings         `json:"gaps,omitempty"`

	Recommendation Recommendation `json:"recommendation"`
	Narrative      string         `json:"narrative"`

	// Missing names the analyzers whose findings were unavailable
	// (branch failure), in stable order.
	Missing []string `json:"missing,omitempty"`

	// Stages carries per-stage telemetry (status, latency, metadata)
	// for the run that produced this report.
	Stages []StageResult `json:"stages,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Degraded reports whether the run completed without all three findings.
func (r *Report) Degraded() bool {
	return len(r.Missing) > 0
}
