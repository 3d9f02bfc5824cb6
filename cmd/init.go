package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/internal/analyzer"
	"github.com/siteiq/siteiq/internal/pipeline"
	"github.com/siteiq/siteiq/internal/querygen"
	"github.com/siteiq/siteiq/internal/store"
	anthropicpkg "github.com/siteiq/siteiq/pkg/anthropic"
	"github.com/siteiq/siteiq/pkg/geocode"
	"github.com/siteiq/siteiq/pkg/warehouse"
)

// pipelineEnv holds the initialized store, clients, and pipeline used by
// the analyze/batch/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Warehouse warehouse.Querier
	Pipeline  *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Warehouse != nil {
		_ = pe.Warehouse.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	cacheTTL := time.Duration(cfg.Geocode.CacheTTLDays) * 24 * time.Hour
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "siteiq.db"
		}
		return store.NewSQLite(dsn, cacheTTL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil, cacheTTL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, warehouse, geocoder, and analyzers, and
// builds the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Warehouse.ProjectID == "" {
		return nil, eris.New("warehouse project ID is required (SITEIQ_WAREHOUSE_PROJECT_ID)")
	}
	if cfg.Geocode.GoogleKey == "" {
		return nil, eris.New("geocoding API key is required (SITEIQ_GEOCODE_GOOGLE_KEY)")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (SITEIQ_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	geocodeOpts := []geocode.Option{geocode.WithRateLimit(cfg.Geocode.RateLimit)}
	if !cfg.Geocode.CacheDisabled {
		geocodeOpts = append(geocodeOpts, geocode.WithCache(st))
	}
	geocoder := geocode.NewClient(cfg.Geocode.GoogleKey, geocodeOpts...)

	wh, err := warehouse.New(ctx, cfg.Warehouse.ProjectID, warehouse.WithMaxRows(cfg.Warehouse.MaxRows))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	tables := querygen.Tables{ProjectID: cfg.Warehouse.ProjectID, Dataset: cfg.Warehouse.Dataset}
	var gen querygen.Generator
	if cfg.Anthropic.GenerateSQL {
		gen = querygen.NewLLMGenerator(anthropicClient, cfg.Anthropic.QueryModel, tables)
		zap.L().Info("sql generation via model", zap.String("model", cfg.Anthropic.QueryModel))
	} else {
		gen = querygen.NewTemplateGenerator(tables)
	}

	policy, err := analyzer.LoadPolicy(cfg.Analyzers)
	if err != nil {
		_ = wh.Close()
		_ = st.Close()
		return nil, err
	}

	p := pipeline.New(cfg, st, geocoder,
		analyzer.NewDemographic(wh, gen, policy.Demographic.RadiusMeters),
		analyzer.NewCompetition(wh, gen, policy.Competition.RadiusMeters, policy.Competition.ResultLimit),
		analyzer.NewGap(wh, gen, policy.Gap.RadiusMeters, policy.Gap.ResultLimit, policy.Gap.GridTiles),
		anthropicClient,
	)

	return &pipelineEnv{Store: st, Warehouse: wh, Pipeline: p}, nil
}
