// Package model defines the data contracts shared across the analysis pipeline.
package model

// LocationQuery is a raw free-text location request, e.g.
// "downtown Austin, TX" or "5th and Main, Portland".
type LocationQuery struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// GeoPoint is a resolved geographic coordinate. Immutable once produced
// by the geocode stage; every analyzer reads the same value.
type GeoPoint struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	NormalizedAddress string  `json:"normalized_address"`
}
