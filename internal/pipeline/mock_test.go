package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/pkg/anthropic"
	"github.com/siteiq/siteiq/pkg/geocode"
)

// --- Geocoder mock ---

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, query string) (*geocode.Result, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Result), args.Error(1)
}

// --- Analyzer mocks ---

type mockDemographic struct {
	mock.Mock
}

func (m *mockDemographic) Analyze(ctx context.Context, point model.GeoPoint) (*model.DemographicFindings, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DemographicFindings), args.Error(1)
}

type mockCompetition struct {
	mock.Mock
}

func (m *mockCompetition) Analyze(ctx context.Context, point model.GeoPoint) (*model.CompetitionFindings, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompetitionFindings), args.Error(1)
}

type mockGap struct {
	mock.Mock
}

func (m *mockGap) Analyze(ctx context.Context, point model.GeoPoint) (*model.GapFindings, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GapFindings), args.Error(1)
}

// --- Anthropic mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// Interface compliance.
var (
	_ geocode.Client      = (*mockGeocoder)(nil)
	_ DemographicAnalyzer = (*mockDemographic)(nil)
	_ CompetitionAnalyzer = (*mockCompetition)(nil)
	_ GapAnalyzer         = (*mockGap)(nil)
	_ anthropic.Client    = (*mockAnthropicClient)(nil)
)
