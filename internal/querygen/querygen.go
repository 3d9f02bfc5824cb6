// Package querygen turns analyzer intent into bounded spatial SQL. The
// Generator interface keeps the strategy pluggable: a deterministic
// template builder and a Claude-backed builder both satisfy it, and the
// pipeline never knows which it got.
package querygen

import (
	"context"
	"fmt"

	"github.com/siteiq/siteiq/internal/model"
)

// Kind identifies the query an analyzer wants.
type Kind string

const (
	KindDemographics    Kind = "demographics"
	KindCompetition     Kind = "competition"
	KindGapPlaces       Kind = "gap_places"
	KindGapDemographics Kind = "gap_demographics"
)

// Intent is the structured input to query generation: what to ask, where,
// and how far out.
type Intent struct {
	Kind         Kind
	Point        model.GeoPoint
	RadiusMeters float64
	Limit        int
}

// Generator produces a SQL query string from an Intent.
type Generator interface {
	Generate(ctx context.Context, intent Intent) (string, error)
}

// Tables names the provisioned warehouse tables.
type Tables struct {
	ProjectID string
	Dataset   string
}

// Demographics returns the fully qualified demographic_data table.
func (t Tables) Demographics() string {
	return fmt.Sprintf("`%s.%s.demographic_data`", t.ProjectID, t.Dataset)
}

// Places returns the fully qualified us_places table.
func (t Tables) Places() string {
	return fmt.Sprintf("`%s.%s.us_places`", t.ProjectID, t.Dataset)
}

// PlaceCategories returns the fully qualified us_places_category table.
func (t Tables) PlaceCategories() string {
	return fmt.Sprintf("`%s.%s.us_places_category`", t.ProjectID, t.Dataset)
}

// table returns the table an intent targets.
func (t Tables) table(kind Kind) string {
	switch kind {
	case KindCompetition, KindGapPlaces:
		return t.Places()
	default:
		return t.Demographics()
	}
}
