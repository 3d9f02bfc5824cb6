package model

// DemographicFindings holds aggregated population, income, and housing
// metrics within RadiusMeters of the analyzed point. Metrics maps a
// warehouse column name to its aggregated value (averages for dollar
// metrics, sums for counts).
type DemographicFindings struct {
	Metrics      map[string]float64 `json:"metrics"`
	RadiusMeters float64            `json:"radius_meters"`
	Rows         int                `json:"rows"`
	NoData       bool               `json:"no_data"`
}

// Place is a single business returned by a spatial places query.
type Place struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	DistanceMeters float64 `json:"distance_meters"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// CompetitionFindings lists nearby competing businesses ordered by
// competitive strength (strongest first).
type CompetitionFindings struct {
	Competitors  []Place `json:"competitors"`
	RadiusMeters float64 `json:"radius_meters"`
	NoData       bool    `json:"no_data"`
}

// GapFindings is the derived market-gap signal: a 0.0-1.0 score, the
// opportunity places that support it, and a short rationale.
type GapFindings struct {
	Score         float64 `json:"score"`
	Rationale     string  `json:"rationale"`
	Opportunities []Place `json:"opportunities"`
	RadiusMeters  float64 `json:"radius_meters"`
	NoData        bool    `json:"no_data"`
}

// Empty reports whether the findings carry no usable signal.
func (f *DemographicFindings) Empty() bool {
	return f == nil || f.NoData || len(f.Metrics) == 0
}

// Empty reports whether the findings carry no usable signal.
func (f *CompetitionFindings) Empty() bool {
	return f == nil || f.NoData || len(f.Competitors) == 0
}

// Empty reports whether the findings carry no usable signal.
func (f *GapFindings) Empty() bool {
	return f == nil || f.NoData
}
