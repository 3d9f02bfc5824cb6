package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/siteiq/siteiq/internal/analyzer"
	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/pkg/anthropic"
)

// Recommendation thresholds for the composite opportunity index.
const (
	goThreshold   = 0.55
	noGoThreshold = 0.35

	// saturationCompetitors is the competitor count at which the area
	// reads as fully saturated.
	saturationCompetitors = 10
)

const narrativeSystemPrompt = `You are a site-selection analyst. Given structured findings for a candidate retail location, write a concise report in Markdown with exactly these sections:

## Executive Summary
## Population Profile
## Economic Snapshot
## Housing Overview
## Retail Implications

Only discuss the data provided. Never invent numbers. Where a findings section is marked unavailable, say so plainly in the relevant section. Do not state a go/no-go verdict; that decision is made elsewhere.`

// Recommend derives the go/no-go verdict from the findings alone. The
// rule is fixed: a composite opportunity index blends the gap score,
// resident demand, and competitive saturation, with hard thresholds on
// either side and inconclusive in between. Missing findings lower the
// index's confidence, and no usable findings at all is always
// inconclusive.
func Recommend(report *model.Report) model.Recommendation {
	demoEmpty := report.Demographics.Empty()
	compEmpty := report.Competition.Empty()
	gapEmpty := report.Gaps.Empty()

	if demoEmpty && compEmpty && gapEmpty {
		return model.RecommendInconclusive
	}

	var gapScore float64
	if !gapEmpty {
		gapScore = report.Gaps.Score
	}

	var demand float64
	if !demoEmpty {
		if pop, ok := report.Demographics.Metrics["total_pop"]; ok {
			demand = min(pop/50000, 1)
		}
	}

	saturation := 1.0
	if !compEmpty {
		saturation = min(float64(len(report.Competition.Competitors))/saturationCompetitors, 1)
	} else if report.Competition != nil && report.Competition.NoData {
		// A clean "no competitors found" is a positive signal, unlike a
		// failed competition branch.
		saturation = 0
	}

	index := 0.6*gapScore + 0.25*demand + 0.15*(1-saturation)

	switch {
	case index >= goThreshold:
		return model.RecommendGo
	case index < noGoThreshold:
		return model.RecommendNoGo
	default:
		return model.RecommendInconclusive
	}
}

// synthesize fills in the report's recommendation and narrative. The
// verdict is always computed in code; the model only writes prose.
func (p *Pipeline) synthesize(ctx context.Context, report *model.Report) error {
	report.Recommendation = Recommend(report)

	if report.Demographics.Empty() && report.Competition.Empty() && report.Gaps.Empty() {
		report.Narrative = "No usable data was found for this location: the warehouse returned no demographics, no competitor places, and no gap signals within the analyzed radii. The recommendation is inconclusive for lack of evidence.\n\n" + caveats(report)
		return nil
	}

	resp, err := p.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.Model,
		MaxTokens: p.cfg.Anthropic.MaxTokens,
		System:    narrativeSystemPrompt,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: findingsPrompt(report)},
		},
	})
	if err != nil {
		return &model.SynthesisError{Err: err}
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "synthesize")

	report.Narrative = strings.TrimSpace(resp.Text) + "\n\n" + caveats(report)
	return nil
}

// findingsPrompt renders the findings for the narrative model.
func findingsPrompt(report *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s (%q)\n\n", report.Point.NormalizedAddress, report.Query)

	if f := report.Demographics; !f.Empty() {
		fmt.Fprintf(&b, "Demographics (within %.0f m, %d census tracts):\n", f.RadiusMeters, f.Rows)
		for _, col := range []string{"total_pop", "median_age", "median_income", "median_home_value", "median_rent", "housing_units", "owner_occupied", "renter_occupied"} {
			v, ok := f.Metrics[col]
			if !ok {
				continue
			}
			switch col {
			case "median_income", "median_home_value", "median_rent":
				fmt.Fprintf(&b, "- %s: %s\n", col, analyzer.FormatDollars(v))
			case "median_age":
				fmt.Fprintf(&b, "- %s: %.1f\n", col, v)
			default:
				fmt.Fprintf(&b, "- %s: %s\n", col, analyzer.FormatCount(v))
			}
		}
	} else {
		b.WriteString("Demographics: unavailable\n")
	}
	b.WriteString("\n")

	if f := report.Competition; !f.Empty() {
		fmt.Fprintf(&b, "Competition (within %.0f m, strongest first):\n", f.RadiusMeters)
		for _, c := range f.Competitors {
			fmt.Fprintf(&b, "- %s (%s, %.0f m away)\n", c.Name, competitorLabel(c), c.DistanceMeters)
		}
	} else {
		b.WriteString("Competition: unavailable\n")
	}
	b.WriteString("\n")

	if f := report.Gaps; !f.Empty() {
		fmt.Fprintf(&b, "Market gap (within %.0f m): score %.2f. %s\n", f.RadiusMeters, f.Score, f.Rationale)
		for _, o := range f.Opportunities {
			fmt.Fprintf(&b, "- %s (%s, %.0f m away)\n", o.Name, o.Category, o.DistanceMeters)
		}
	} else {
		b.WriteString("Market gap: unavailable\n")
	}
	return b.String()
}

func competitorLabel(p model.Place) string {
	if p.Description != "" {
		return p.Description
	}
	return p.Category
}

// caveats appends the deterministic data-quality footer. It never goes
// through the model, so a degraded run is always disclosed verbatim.
func caveats(report *model.Report) string {
	var lines []string
	for _, name := range report.Missing {
		lines = append(lines, fmt.Sprintf("- The %s analysis failed and is not reflected above.", name))
	}
	if report.Demographics != nil && report.Demographics.NoData {
		lines = append(lines, "- No census tracts were found within the demographic radius.")
	}
	if report.Competition != nil && report.Competition.NoData {
		lines = append(lines, "- No competing businesses were found within the competition radius.")
	}
	if report.Gaps != nil && report.Gaps.NoData {
		lines = append(lines, "- No gap signals were found within the gap radius.")
	}
	if len(lines) == 0 {
		return "## Data caveats\n\nNone; all analyzers returned data."
	}
	return "## Data caveats\n\n" + strings.Join(lines, "\n")
}
