package querygen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/pkg/anthropic"
)

var testTables = Tables{ProjectID: "siteiq-test", Dataset: "geo_intent"}

var austin = model.GeoPoint{Latitude: 30.2672, Longitude: -97.7431}

func TestTemplateGenerator_Demographics(t *testing.T) {
	g := NewTemplateGenerator(testTables)

	sql, err := g.Generate(context.Background(), Intent{
		Kind:         KindDemographics,
		Point:        austin,
		RadiusMeters: 5000,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "`siteiq-test.geo_intent.demographic_data`")
	assert.Contains(t, sql, "ST_GEOGPOINT(-97.743100, 30.267200)")
	assert.Contains(t, sql, "<= 5000")
	assert.Contains(t, sql, "SUM(total_pop)")
	assert.Contains(t, sql, "AVG(median_income)")
	assert.NoError(t, Validate(sql, testTables.Demographics()))
}

func TestTemplateGenerator_Competition(t *testing.T) {
	g := NewTemplateGenerator(testTables)

	sql, err := g.Generate(context.Background(), Intent{
		Kind:         KindCompetition,
		Point:        austin,
		RadiusMeters: 2000,
		Limit:        10,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "`siteiq-test.geo_intent.us_places`")
	assert.Contains(t, sql, "`siteiq-test.geo_intent.us_places_category`")
	assert.Contains(t, sql, "p.competition = TRUE")
	assert.Contains(t, sql, "ORDER BY p.competition_magnitude DESC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "<= 2000")
	assert.NoError(t, Validate(sql, testTables.Places()))
}

func TestTemplateGenerator_GapPlaces(t *testing.T) {
	g := NewTemplateGenerator(testTables)

	sql, err := g.Generate(context.Background(), Intent{
		Kind:         KindGapPlaces,
		Point:        austin,
		RadiusMeters: 3000,
		Limit:        10,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "p.opportunity = TRUE")
	assert.Contains(t, sql, "ORDER BY p.opportunity_magnitude DESC")
	assert.NotContains(t, sql, "competition")
}

func TestTemplateGenerator_UnknownKind(t *testing.T) {
	g := NewTemplateGenerator(testTables)
	_, err := g.Generate(context.Background(), Intent{Kind: Kind("bogus")})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	table := testTables.Demographics()
	good := "SELECT COUNT(*) FROM " + table + " WHERE ST_DISTANCE(ST_GEOGPOINT(0,0), point_geom) <= 100"

	tests := []struct {
		name    string
		sql     string
		wantErr string
	}{
		{"valid", good, ""},
		{"valid with trailing semicolon", good + ";", ""},
		{"empty", "   ", "empty"},
		{"not a select", "EXPLAIN " + good, "must be a SELECT"},
		{"dml", "DELETE FROM " + table + " WHERE ST_DISTANCE(a, b) <= 1", "must be a SELECT"},
		{"embedded dml", good + "; DROP TABLE x", "multiple statements"},
		{"forbidden keyword", strings.Replace(good, "COUNT(*)", "COUNT(*), (SELECT 1 FROM x WHERE GRANT)", 1), "GRANT"},
		{"wrong table", "SELECT 1 FROM `other.table` WHERE ST_DISTANCE(a, b) <= 1", "does not read"},
		{"no spatial bound", "SELECT COUNT(*) FROM " + table, "no spatial bound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sql, table)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func TestLLMGenerator_StripsFencesAndValidates(t *testing.T) {
	llm := new(mockLLM)
	fenced := "```sql\nSELECT COUNT(*) FROM `siteiq-test.geo_intent.demographic_data` WHERE ST_DISTANCE(ST_GEOGPOINT(-97.743100, 30.267200), point_geom) <= 5000\n```"
	llm.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "test-model" && strings.Contains(req.System, "BigQuery")
	})).Return(&anthropic.MessageResponse{Text: fenced}, nil)

	g := NewLLMGenerator(llm, "test-model", testTables)
	sql, err := g.Generate(context.Background(), Intent{
		Kind:         KindDemographics,
		Point:        austin,
		RadiusMeters: 5000,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "SELECT"))
	assert.NotContains(t, sql, "```")
	llm.AssertExpectations(t)
}

func TestLLMGenerator_RejectsUnsafeSQL(t *testing.T) {
	llm := new(mockLLM)
	llm.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{Text: "DROP TABLE `siteiq-test.geo_intent.demographic_data`"}, nil)

	g := NewLLMGenerator(llm, "test-model", testTables)
	_, err := g.Generate(context.Background(), Intent{
		Kind:         KindDemographics,
		Point:        austin,
		RadiusMeters: 5000,
	})
	require.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "SELECT 1", stripFences("SELECT 1"))
	assert.Equal(t, "SELECT 1", stripFences("```sql\nSELECT 1\n```"))
	assert.Equal(t, "SELECT 1", stripFences("```\nSELECT 1\n```"))
	assert.Equal(t, "SELECT 1", stripFences("  SELECT 1  "))
}
