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

// demographicColumns are the aggregated metrics read back from the
// warehouse: dollar and age columns arrive averaged across tracts, counts
// arrive summed.
var demographicColumns = []string{
	"total_pop",
	"median_age",
	"median_income",
	"median_home_value",
	"median_rent",
	"housing_units",
	"owner_occupied",
	"renter_occupied",
}

// Demographic aggregates census metrics around a point.
type Demographic struct {
	wh           warehouse.Querier
	gen          querygen.Generator
	radiusMeters float64
	retry        resilience.RetryConfig
}

// NewDemographic builds the demographic analyzer.
func NewDemographic(wh warehouse.Querier, gen querygen.Generator, radiusMeters float64) *Demographic {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("warehouse", "demographics")
	return &Demographic{wh: wh, gen: gen, radiusMeters: radiusMeters, retry: retry}
}

// Analyze aggregates demographics within the configured radius of point.
func (a *Demographic) Analyze(ctx context.Context, point model.GeoPoint) (*model.DemographicFindings, error) {
	sql, err := a.gen.Generate(ctx, querygen.Intent{
		Kind:         querygen.KindDemographics,
		Point:        point,
		RadiusMeters: a.radiusMeters,
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: demographics query")
	}

	rows, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) ([]warehouse.Row, error) {
		return a.wh.Query(ctx, sql)
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: demographics")
	}

	findings := &model.DemographicFindings{
		Metrics:      map[string]float64{},
		RadiusMeters: a.radiusMeters,
	}
	if len(rows) == 0 {
		findings.NoData = true
		return findings, nil
	}

	row := rows[0]
	tracts, _ := row.Float64("tracts")
	findings.Rows = int(tracts)
	if tracts == 0 {
		// Aggregate over zero tracts: one row, all NULLs.
		findings.NoData = true
		return findings, nil
	}

	for _, col := range demographicColumns {
		if v, ok := row.Float64(col); ok {
			findings.Metrics[col] = v
		}
	}
	if len(findings.Metrics) == 0 {
		findings.NoData = true
	}

	zap.L().Debug("analyzer: demographics done",
		zap.Int("tracts", findings.Rows),
		zap.Int("metrics", len(findings.Metrics)))
	return findings, nil
}
