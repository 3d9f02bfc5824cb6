// Package pipeline orchestrates a location analysis run: geocode the
// query, fan out the three analyzers against the warehouse, and
// synthesize a report.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/siteiq/siteiq/internal/config"
	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/internal/store"
	"github.com/siteiq/siteiq/internal/telemetry"
	"github.com/siteiq/siteiq/pkg/anthropic"
	"github.com/siteiq/siteiq/pkg/geocode"
)

// DemographicAnalyzer aggregates census metrics around a point.
type DemographicAnalyzer interface {
	Analyze(ctx context.Context, point model.GeoPoint) (*model.DemographicFindings, error)
}

// CompetitionAnalyzer lists competing businesses around a point.
type CompetitionAnalyzer interface {
	Analyze(ctx context.Context, point model.GeoPoint) (*model.CompetitionFindings, error)
}

// GapAnalyzer scores the market gap around a point.
type GapAnalyzer interface {
	Analyze(ctx context.Context, point model.GeoPoint) (*model.GapFindings, error)
}

// Pipeline runs the geocode, analyze, and synthesize stages.
type Pipeline struct {
	cfg          *config.Config
	store        store.Store
	geocoder     geocode.Client
	demographics DemographicAnalyzer
	competition  CompetitionAnalyzer
	gaps         GapAnalyzer
	anthropic    anthropic.Client
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	geocoder geocode.Client,
	demographics DemographicAnalyzer,
	competition CompetitionAnalyzer,
	gaps GapAnalyzer,
	aiClient anthropic.Client,
) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		store:        st,
		geocoder:     geocoder,
		demographics: demographics,
		competition:  competition,
		gaps:         gaps,
		anthropic:    aiClient,
	}
}

// Run analyzes a single location query and returns its report. A query
// that cannot be resolved to coordinates returns a ResolutionError and
// no report; a failed analyzer branch degrades the report instead of
// failing the run.
func (p *Pipeline) Run(ctx context.Context, query model.LocationQuery) (*model.Report, error) {
	log := zap.L().With(zap.String("query", query.Text))
	log.Info("pipeline: starting analysis")

	run, err := p.store.CreateRun(ctx, query.Text)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}
	failRun := func(cause error) {
		if failErr := p.store.FailRun(ctx, run.ID, cause.Error()); failErr != nil {
			log.Warn("pipeline: failed to record failure", zap.Error(failErr))
		}
	}

	// Stage tracking helper; safe for concurrent use by the analyzer
	// branches. The stage span derives from stageCtx and is handed to fn
	// so downstream warehouse/LLM calls parent under it.
	var stagesMu sync.Mutex
	var stages []model.StageResult
	trackStage := func(stageCtx context.Context, name string, fn func(ctx context.Context) (*model.StageResult, error)) error {
		stage, stageErr := p.store.CreateStage(ctx, run.ID, name)
		if stageErr != nil {
			log.Warn("pipeline: failed to create stage", zap.String("stage", name), zap.Error(stageErr))
		}

		spanCtx, span := telemetry.StartSpan(stageCtx, "pipeline."+name,
			attribute.String("run.id", run.ID))
		start := time.Now()
		stageResult, fnErr := fn(spanCtx)
		duration := time.Since(start).Milliseconds()
		telemetry.EndSpan(span, fnErr)

		if stageResult == nil {
			stageResult = &model.StageResult{}
		}
		stageResult.Name = name
		stageResult.Duration = duration

		if fnErr != nil {
			stageResult.Status = model.StageStatusFailed
			stageResult.Error = fnErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else if stageResult.Status == "" {
			stageResult.Status = model.StageStatusComplete
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if stage != nil {
			_ = p.store.CompleteStage(ctx, stage.ID, stageResult)
		}
		stagesMu.Lock()
		stages = append(stages, *stageResult)
		stagesMu.Unlock()
		return fnErr
	}

	// ===== Stage 1: Geocode =====
	setStatus(model.RunStatusGeocoding)

	var point model.GeoPoint
	geocodeErr := trackStage(ctx, "geocode", func(ctx context.Context) (*model.StageResult, error) {
		result, gErr := p.geocoder.Geocode(ctx, query.Text)
		if gErr != nil {
			return nil, &model.ResolutionError{Query: query.Text, Err: gErr}
		}
		if !result.Matched {
			return nil, &model.ResolutionError{Query: query.Text}
		}
		point = model.GeoPoint{
			Latitude:          result.Latitude,
			Longitude:         result.Longitude,
			NormalizedAddress: result.NormalizedAddress,
		}
		return &model.StageResult{
			Metadata: map[string]any{
				"address": result.NormalizedAddress,
				"quality": result.Quality,
			},
		}, nil
	})
	if geocodeErr != nil {
		failRun(geocodeErr)
		return nil, geocodeErr
	}

	// ===== Stage 2: Analyzer fan-out =====
	// Branch failures are isolated: each surfaces as a failed stage and a
	// nil findings pointer, never as a pipeline error.
	setStatus(model.RunStatusAnalyzing)

	var demoFindings *model.DemographicFindings
	var compFindings *model.CompetitionFindings
	var gapFindings *model.GapFindings

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_ = trackStage(gCtx, "demographics", func(ctx context.Context) (*model.StageResult, error) {
			f, aErr := p.demographics.Analyze(ctx, point)
			if aErr != nil {
				return nil, &model.QueryError{Analyzer: "demographics", Err: aErr}
			}
			demoFindings = f
			return &model.StageResult{
				Metadata: map[string]any{"tracts": f.Rows, "no_data": f.NoData},
			}, nil
		})
		return nil
	})

	g.Go(func() error {
		_ = trackStage(gCtx, "competition", func(ctx context.Context) (*model.StageResult, error) {
			f, aErr := p.competition.Analyze(ctx, point)
			if aErr != nil {
				return nil, &model.QueryError{Analyzer: "competition", Err: aErr}
			}
			compFindings = f
			return &model.StageResult{
				Metadata: map[string]any{"competitors": len(f.Competitors), "no_data": f.NoData},
			}, nil
		})
		return nil
	})

	g.Go(func() error {
		_ = trackStage(gCtx, "gaps", func(ctx context.Context) (*model.StageResult, error) {
			f, aErr := p.gaps.Analyze(ctx, point)
			if aErr != nil {
				return nil, &model.QueryError{Analyzer: "gaps", Err: aErr}
			}
			gapFindings = f
			return &model.StageResult{
				Metadata: map[string]any{"score": f.Score, "no_data": f.NoData},
			}, nil
		})
		return nil
	})

	_ = g.Wait()

	// Stable order: demographics, competition, gaps.
	var missing []string
	if demoFindings == nil {
		missing = append(missing, "demographics")
	}
	if compFindings == nil {
		missing = append(missing, "competition")
	}
	if gapFindings == nil {
		missing = append(missing, "gaps")
	}

	report := &model.Report{
		RunID:        run.ID,
		Query:        query.Text,
		Point:        point,
		Demographics: demoFindings,
		Competition:  compFindings,
		Gaps:         gapFindings,
		Missing:      missing,
	}

	// ===== Stage 3: Synthesize =====
	setStatus(model.RunStatusSynthesizing)

	synthErr := trackStage(ctx, "synthesize", func(ctx context.Context) (*model.StageResult, error) {
		if sErr := p.synthesize(ctx, report); sErr != nil {
			return nil, sErr
		}
		return &model.StageResult{
			Metadata: map[string]any{
				"recommendation": string(report.Recommendation),
				"degraded":       report.Degraded(),
			},
		}, nil
	})
	if synthErr != nil {
		failRun(synthErr)
		return nil, synthErr
	}

	setStatus(model.RunStatusComplete)
	stagesMu.Lock()
	report.Stages = stages
	stagesMu.Unlock()
	report.GeneratedAt = time.Now().UTC()

	log.Info("pipeline: analysis complete",
		zap.String("run_id", run.ID),
		zap.String("recommendation", string(report.Recommendation)),
		zap.Strings("missing", missing),
	)
	return report, nil
}
