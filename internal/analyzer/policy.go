// Package analyzer runs the three concurrent warehouse analyses:
// demographics, competition, and market gap.
package analyzer

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/siteiq/siteiq/internal/config"
)

// Policy holds the per-analyzer radius and limit settings. A policy file
// lets analysts retune trade areas without a redeploy.
type Policy struct {
	Demographic struct {
		RadiusMeters float64 `yaml:"radius_meters"`
	} `yaml:"demographic"`
	Competition struct {
		RadiusMeters float64 `yaml:"radius_meters"`
		ResultLimit  int     `yaml:"result_limit"`
	} `yaml:"competition"`
	Gap struct {
		RadiusMeters float64 `yaml:"radius_meters"`
		ResultLimit  int     `yaml:"result_limit"`
		GridTiles    int     `yaml:"grid_tiles"`
	} `yaml:"gap"`
}

// LoadPolicy builds the effective policy: configuration defaults,
// overridden field-by-field from the policy file when one is configured.
func LoadPolicy(cfg config.AnalyzersConfig) (*Policy, error) {
	p := &Policy{}
	p.Demographic.RadiusMeters = cfg.DemographicRadiusM
	p.Competition.RadiusMeters = cfg.CompetitionRadiusM
	p.Competition.ResultLimit = cfg.ResultLimit
	p.Gap.RadiusMeters = cfg.GapRadiusM
	p.Gap.ResultLimit = cfg.ResultLimit
	p.Gap.GridTiles = cfg.GridTiles

	if cfg.PolicyFile == "" {
		return p, nil
	}

	data, err := os.ReadFile(cfg.PolicyFile)
	if err != nil {
		return nil, eris.Wrapf(err, "analyzer: read policy file %s", cfg.PolicyFile)
	}

	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "analyzer: parse policy file %s", cfg.PolicyFile)
	}

	if override.Demographic.RadiusMeters > 0 {
		p.Demographic.RadiusMeters = override.Demographic.RadiusMeters
	}
	if override.Competition.RadiusMeters > 0 {
		p.Competition.RadiusMeters = override.Competition.RadiusMeters
	}
	if override.Competition.ResultLimit > 0 {
		p.Competition.ResultLimit = override.Competition.ResultLimit
	}
	if override.Gap.RadiusMeters > 0 {
		p.Gap.RadiusMeters = override.Gap.RadiusMeters
	}
	if override.Gap.ResultLimit > 0 {
		p.Gap.ResultLimit = override.Gap.ResultLimit
	}
	if override.Gap.GridTiles > 0 {
		p.Gap.GridTiles = override.Gap.GridTiles
	}

	zap.L().Info("analyzer: policy loaded",
		zap.String("file", cfg.PolicyFile),
		zap.Float64("demographic_radius_m", p.Demographic.RadiusMeters),
		zap.Float64("competition_radius_m", p.Competition.RadiusMeters),
		zap.Float64("gap_radius_m", p.Gap.RadiusMeters),
	)
	return p, nil
}
