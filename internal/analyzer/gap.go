package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/internal/grid"
	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/internal/querygen"
	"github.com/siteiq/siteiq/internal/resilience"
	"github.com/siteiq/siteiq/pkg/warehouse"
)

// Gap scores how underserved a trade area looks. The score blends three
// deterministic signals: how many opportunity-flagged places the
// warehouse already marks nearby, how much resident demand the
// demographics show, and how unevenly the opportunity places spread
// across a tile grid over the trade area.
type Gap struct {
	wh           warehouse.Querier
	gen          querygen.Generator
	radiusMeters float64
	limit        int
	gridTiles    int
	retry        resilience.RetryConfig
}

// NewGap builds the gap analyzer.
func NewGap(wh warehouse.Querier, gen querygen.Generator, radiusMeters float64, limit, gridTiles int) *Gap {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("warehouse", "gap")
	return &Gap{wh: wh, gen: gen, radiusMeters: radiusMeters, limit: limit, gridTiles: gridTiles, retry: retry}
}

// Analyze scores the market gap around point.
func (a *Gap) Analyze(ctx context.Context, point model.GeoPoint) (*model.GapFindings, error) {
	opportunities, err := a.opportunityPlaces(ctx, point)
	if err != nil {
		return nil, err
	}
	population, hasDemand, err := a.nearbyPopulation(ctx, point)
	if err != nil {
		return nil, err
	}

	findings := &model.GapFindings{
		Opportunities: opportunities,
		RadiusMeters:  a.radiusMeters,
	}
	if len(opportunities) == 0 && !hasDemand {
		findings.NoData = true
		findings.Rationale = "no opportunity signals or demand data within the trade area"
		return findings, nil
	}

	placeSignal := clamp01(float64(len(opportunities)) / float64(max(a.limit, 1)))
	demandSignal := clamp01(population / demandSaturationPop)

	g, err := grid.New(point, a.radiusMeters, a.gridTiles)
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: gap grid")
	}
	g.Assign(opportunities)
	// Sparse coverage of the grid means the opportunity signal clusters
	// instead of blanketing the area, leaving room elsewhere.
	dispersionSignal := 1 - g.Occupancy()

	findings.Score = clamp01(0.5*placeSignal + 0.3*demandSignal + 0.2*dispersionSignal)
	findings.Rationale = gapRationale(len(opportunities), population, hasDemand, g.Occupancy())

	zap.L().Debug("analyzer: gap done",
		zap.Float64("score", findings.Score),
		zap.Int("opportunities", len(opportunities)),
		zap.Float64("grid_occupancy", g.Occupancy()))
	return findings, nil
}

// demandSaturationPop is the trade-area population at which the demand
// signal maxes out.
const demandSaturationPop = 50000

func (a *Gap) opportunityPlaces(ctx context.Context, point model.GeoPoint) ([]model.Place, error) {
	sql, err := a.gen.Generate(ctx, querygen.Intent{
		Kind:         querygen.KindGapPlaces,
		Point:        point,
		RadiusMeters: a.radiusMeters,
		Limit:        a.limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: gap places query")
	}
	rows, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) ([]warehouse.Row, error) {
		return a.wh.Query(ctx, sql)
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: gap places")
	}
	return placesFromRows(rows), nil
}

func (a *Gap) nearbyPopulation(ctx context.Context, point model.GeoPoint) (float64, bool, error) {
	sql, err := a.gen.Generate(ctx, querygen.Intent{
		Kind:         querygen.KindGapDemographics,
		Point:        point,
		RadiusMeters: a.radiusMeters,
	})
	if err != nil {
		return 0, false, eris.Wrap(err, "analyzer: gap demand query")
	}
	rows, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) ([]warehouse.Row, error) {
		return a.wh.Query(ctx, sql)
	})
	if err != nil {
		return 0, false, eris.Wrap(err, "analyzer: gap demand")
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	tracts, _ := rows[0].Float64("tracts")
	if tracts == 0 {
		return 0, false, nil
	}
	pop, ok := rows[0].Float64("total_pop")
	return pop, ok, nil
}

func gapRationale(opportunities int, population float64, hasDemand bool, occupancy float64) string {
	var parts []string
	switch {
	case opportunities == 0:
		parts = append(parts, "no opportunity-flagged places nearby")
	case opportunities == 1:
		parts = append(parts, "1 opportunity-flagged place nearby")
	default:
		parts = append(parts, fmt.Sprintf("%d opportunity-flagged places nearby", opportunities))
	}
	if hasDemand {
		parts = append(parts, fmt.Sprintf("trade-area population %s", FormatCount(population)))
	} else {
		parts = append(parts, "no demand data")
	}
	if opportunities > 0 {
		parts = append(parts, fmt.Sprintf("signals cover %.0f%% of the trade-area grid", occupancy*100))
	}
	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
