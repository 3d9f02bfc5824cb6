package analyzer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/internal/querygen"
	"github.com/siteiq/siteiq/internal/resilience"
	"github.com/siteiq/siteiq/pkg/warehouse"
)

// Competition finds competing businesses around a point, strongest
// competitive signal first.
type Competition struct {
	wh           warehouse.Querier
	gen          querygen.Generator
	radiusMeters float64
	limit        int
	retry        resilience.RetryConfig
}

// NewCompetition builds the competition analyzer.
func NewCompetition(wh warehouse.Querier, gen querygen.Generator, radiusMeters float64, limit int) *Competition {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("warehouse", "competition")
	return &Competition{wh: wh, gen: gen, radiusMeters: radiusMeters, limit: limit, retry: retry}
}

// Analyze lists competitors within the configured radius of point.
func (a *Competition) Analyze(ctx context.Context, point model.GeoPoint) (*model.CompetitionFindings, error) {
	sql, err := a.gen.Generate(ctx, querygen.Intent{
		Kind:         querygen.KindCompetition,
		Point:        point,
		RadiusMeters: a.radiusMeters,
		Limit:        a.limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: competition query")
	}

	rows, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) ([]warehouse.Row, error) {
		return a.wh.Query(ctx, sql)
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: competition")
	}

	findings := &model.CompetitionFindings{
		Competitors:  placesFromRows(rows),
		RadiusMeters: a.radiusMeters,
	}
	if len(findings.Competitors) == 0 {
		findings.NoData = true
	}

	zap.L().Debug("analyzer: competition done", zap.Int("competitors", len(findings.Competitors)))
	return findings, nil
}

// placesFromRows shapes place rows into model.Place values, skipping rows
// without a name.
func placesFromRows(rows []warehouse.Row) []model.Place {
	places := make([]model.Place, 0, len(rows))
	for _, row := range rows {
		name, ok := row.String("name")
		if !ok || name == "" {
			continue
		}
		p := model.Place{Name: name}
		p.Category, _ = row.String("category")
		p.Description, _ = row.String("description")
		p.DistanceMeters, _ = row.Float64("distance_m")
		p.Latitude, _ = row.Float64("latitude")
		p.Longitude, _ = row.Float64("longitude")
		places = append(places, p)
	}
	return places
}
