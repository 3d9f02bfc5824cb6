package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siteiq/siteiq/internal/model"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name   string
		report *model.Report
		want   model.Recommendation
	}{
		{
			name: "strong gap, low competition",
			report: &model.Report{
				Demographics: goodDemographics(),
				Competition:  goodCompetition(),
				Gaps:         &model.GapFindings{Score: 0.9},
			},
			want: model.RecommendGo,
		},
		{
			name: "weak gap, saturated market",
			report: &model.Report{
				Demographics: goodDemographics(),
				Competition: &model.CompetitionFindings{
					Competitors: make([]model.Place, 10),
				},
				Gaps: &model.GapFindings{Score: 0.05},
			},
			want: model.RecommendNoGo,
		},
		{
			name: "middling signals",
			report: &model.Report{
				Demographics: &model.DemographicFindings{
					Metrics: map[string]float64{"total_pop": 20000},
				},
				Competition: &model.CompetitionFindings{
					Competitors: make([]model.Place, 6),
				},
				Gaps: &model.GapFindings{Score: 0.4},
			},
			want: model.RecommendInconclusive,
		},
		{
			name: "no usable findings at all",
			report: &model.Report{
				Demographics: &model.DemographicFindings{NoData: true},
				Competition:  &model.CompetitionFindings{NoData: true},
				Gaps:         &model.GapFindings{NoData: true},
			},
			want: model.RecommendInconclusive,
		},
		{
			name:   "all branches failed",
			report: &model.Report{},
			want:   model.RecommendInconclusive,
		},
		{
			name: "clean zero-competition reads positive",
			report: &model.Report{
				Demographics: goodDemographics(),
				Competition:  &model.CompetitionFindings{NoData: true},
				Gaps:         &model.GapFindings{Score: 0.5},
			},
			want: model.RecommendGo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.report))
		})
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	report := &model.Report{
		Demographics: goodDemographics(),
		Competition:  goodCompetition(),
		Gaps:         goodGaps(),
	}
	first := Recommend(report)
	for range 5 {
		assert.Equal(t, first, Recommend(report))
	}
}

func TestFindingsPrompt(t *testing.T) {
	report := &model.Report{
		Query:        "downtown Austin, TX",
		Point:        austinPoint,
		Demographics: goodDemographics(),
		Competition:  goodCompetition(),
		Gaps:         goodGaps(),
	}

	prompt := findingsPrompt(report)
	assert.Contains(t, prompt, "Austin, TX, USA")
	assert.Contains(t, prompt, "48,210")
	assert.Contains(t, prompt, "$71,250")
	assert.Contains(t, prompt, "Blue Cup Coffee")
	assert.Contains(t, prompt, "score 0.70")
}

func TestFindingsPrompt_PartialData(t *testing.T) {
	report := &model.Report{
		Query:        "Austin",
		Point:        austinPoint,
		Demographics: goodDemographics(),
		Missing:      []string{"competition", "gaps"},
	}

	prompt := findingsPrompt(report)
	assert.Contains(t, prompt, "Competition: unavailable")
	assert.Contains(t, prompt, "Market gap: unavailable")
}

func TestCaveats(t *testing.T) {
	clean := &model.Report{
		Demographics: goodDemographics(),
		Competition:  goodCompetition(),
		Gaps:         goodGaps(),
	}
	assert.Contains(t, caveats(clean), "None")

	degraded := &model.Report{
		Missing:     []string{"demographics"},
		Competition: &model.CompetitionFindings{NoData: true},
	}
	got := caveats(degraded)
	assert.Contains(t, got, "demographics analysis failed")
	assert.Contains(t, got, "No competing businesses")
	assert.NotContains(t, got, "None;")
}
