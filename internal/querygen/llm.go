package querygen

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/pkg/anthropic"
)

const sqlSystemPrompt = `You write BigQuery Standard SQL for a location analysis warehouse.
Rules:
- Output ONLY the SQL statement. No prose, no markdown fences.
- Exactly one SELECT statement. Never modify data.
- Filter rows to the requested radius with ST_DISTANCE against the table's geography column.
- Keep result sets small: aggregate, or ORDER BY the relevant magnitude column and LIMIT.

Tables:
- demographic_data(geo_id, total_pop, median_age, median_income, median_home_value, median_rent, housing_units, owner_occupied, renter_occupied, point_geom GEOGRAPHY)
- us_places(name, category, competition BOOL, competition_magnitude, opportunity BOOL, opportunity_magnitude, geometry GEOGRAPHY)
- us_places_category(category, category_description)`

// LLMGenerator asks Claude to write the SQL. Every generated statement is
// validated before it reaches the warehouse; on a validation failure the
// statement is rejected rather than repaired.
type LLMGenerator struct {
	client anthropic.Client
	model  string
	tables Tables
}

// NewLLMGenerator returns a Claude-backed Generator.
func NewLLMGenerator(client anthropic.Client, model string, tables Tables) *LLMGenerator {
	return &LLMGenerator{client: client, model: model, tables: tables}
}

var _ Generator = (*LLMGenerator)(nil)

// Generate prompts the model for a single SELECT and validates the result.
func (g *LLMGenerator) Generate(ctx context.Context, intent Intent) (string, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: 1024,
		System:    sqlSystemPrompt,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: g.userPrompt(intent)},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "querygen: generate sql")
	}
	resp.Usage.LogCost(g.model, "querygen")

	sql := stripFences(resp.Text)
	if err := Validate(sql, g.tables.table(intent.Kind)); err != nil {
		zap.L().Warn("querygen: rejected generated sql",
			zap.String("kind", string(intent.Kind)),
			zap.Error(err))
		return "", err
	}
	return sql, nil
}

func (g *LLMGenerator) userPrompt(intent Intent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Center: longitude %.6f, latitude %.6f. Radius: %.0f meters.\n",
		intent.Point.Longitude, intent.Point.Latitude, intent.RadiusMeters)

	switch intent.Kind {
	case KindDemographics, KindGapDemographics:
		fmt.Fprintf(&b, "Aggregate %s for tracts within the radius: sum the population and housing unit counts, average the dollar and age columns, and count the tracts.",
			g.tables.Demographics())
	case KindCompetition:
		fmt.Fprintf(&b, "From %s joined to %s, list places with competition = TRUE within the radius, with name, category, category_description, distance in meters, and coordinates. Order by competition_magnitude DESC, LIMIT %d.",
			g.tables.Places(), g.tables.PlaceCategories(), intent.Limit)
	case KindGapPlaces:
		fmt.Fprintf(&b, "From %s joined to %s, list places with opportunity = TRUE within the radius, with name, category, category_description, distance in meters, and coordinates. Order by opportunity_magnitude DESC, LIMIT %d.",
			g.tables.Places(), g.tables.PlaceCategories(), intent.Limit)
	}
	return b.String()
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
