package querygen

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// TemplateGenerator builds SQL from fixed templates. Deterministic and
// auditable; the default strategy.
type TemplateGenerator struct {
	tables Tables
}

// NewTemplateGenerator returns a template-based Generator over the given
// tables.
func NewTemplateGenerator(tables Tables) *TemplateGenerator {
	return &TemplateGenerator{tables: tables}
}

var _ Generator = (*TemplateGenerator)(nil)

// Generate renders the template for the intent's kind.
func (g *TemplateGenerator) Generate(_ context.Context, intent Intent) (string, error) {
	switch intent.Kind {
	case KindDemographics, KindGapDemographics:
		return g.demographicsSQL(intent), nil
	case KindCompetition:
		return g.placesSQL(intent, "competition", "competition_magnitude"), nil
	case KindGapPlaces:
		return g.placesSQL(intent, "opportunity", "opportunity_magnitude"), nil
	default:
		return "", eris.Errorf("querygen: unknown intent kind %q", intent.Kind)
	}
}

// demographicsSQL aggregates census tracts within the radius. Dollar and
// ratio columns are averaged across tracts; population and unit counts
// are summed.
func (g *TemplateGenerator) demographicsSQL(intent Intent) string {
	return fmt.Sprintf(`SELECT
  COUNT(*) AS tracts,
  SUM(total_pop) AS total_pop,
  AVG(median_age) AS median_age,
  AVG(median_income) AS median_income,
  AVG(median_home_value) AS median_home_value,
  AVG(median_rent) AS median_rent,
  SUM(housing_units) AS housing_units,
  SUM(owner_occupied) AS owner_occupied,
  SUM(renter_occupied) AS renter_occupied
FROM %s
WHERE ST_DISTANCE(%s, point_geom) <= %s`,
		g.tables.Demographics(), geogPoint(intent), radiusLiteral(intent.RadiusMeters))
}

// placesSQL selects flagged places within the radius, strongest signal
// first, joined to the category table for human-readable descriptions.
func (g *TemplateGenerator) placesSQL(intent Intent, flag, magnitude string) string {
	return fmt.Sprintf(`SELECT
  p.name AS name,
  p.category AS category,
  c.category_description AS description,
  ST_DISTANCE(%[1]s, p.geometry) AS distance_m,
  ST_Y(p.geometry) AS latitude,
  ST_X(p.geometry) AS longitude
FROM %[2]s AS p
JOIN %[3]s AS c USING (category)
WHERE p.%[4]s = TRUE
  AND ST_DISTANCE(%[1]s, p.geometry) <= %[5]s
ORDER BY p.%[6]s DESC
LIMIT %[7]d`,
		geogPoint(intent), g.tables.Places(), g.tables.PlaceCategories(),
		flag, radiusLiteral(intent.RadiusMeters), magnitude, intent.Limit)
}

func geogPoint(intent Intent) string {
	return fmt.Sprintf("ST_GEOGPOINT(%.6f, %.6f)", intent.Point.Longitude, intent.Point.Latitude)
}

func radiusLiteral(meters float64) string {
	s := fmt.Sprintf("%.1f", meters)
	return strings.TrimSuffix(s, ".0")
}
