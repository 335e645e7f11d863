package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// ErrInvalidRiskConfig is returned when the risk analysis data is inconsistent
var ErrInvalidRiskConfig = goerr.New("invalid risk config")

// LikelihoodLevel is one row of the risk matrix
type LikelihoodLevel struct {
	ID          types.LikelihoodID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Score       int                `json:"score"`
}

// ImpactLevel is one column of the risk matrix
type ImpactLevel struct {
	ID          types.ImpactID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Score       int            `json:"score"`
}

// RiskEntry is one item of the static risk register shown on the risk
// analysis page
type RiskEntry struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Likelihood types.LikelihoodID `json:"likelihood"`
	Impact     types.ImpactID     `json:"impact"`
	Owner      string             `json:"owner,omitempty"`
	Treatment  string             `json:"treatment,omitempty"`
}

// TrendPoint is one point of the compliance trend chart
type TrendPoint struct {
	Period string  `json:"period"`
	Score  float64 `json:"score"`
}

// RiskConfig holds the precomputed chart data of the risk analysis page
type RiskConfig struct {
	Likelihood []LikelihoodLevel `json:"likelihood"`
	Impact     []ImpactLevel     `json:"impact"`
	Risks      []RiskEntry       `json:"risks"`
	Trend      []TrendPoint      `json:"trend"`
}

// Validate checks level IDs are valid and unique, and that every risk
// refers to a declared likelihood and impact.
func (c *RiskConfig) Validate() error {
	likelihoods := make(map[types.LikelihoodID]bool)
	for _, l := range c.Likelihood {
		if err := l.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid likelihood level")
		}
		if likelihoods[l.ID] {
			return goerr.Wrap(ErrInvalidRiskConfig, "duplicate likelihood level", goerr.V("id", l.ID))
		}
		if l.Name == "" {
			return goerr.Wrap(ErrInvalidRiskConfig, "likelihood name is required", goerr.V("id", l.ID))
		}
		likelihoods[l.ID] = true
	}

	impacts := make(map[types.ImpactID]bool)
	for _, i := range c.Impact {
		if err := i.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid impact level")
		}
		if impacts[i.ID] {
			return goerr.Wrap(ErrInvalidRiskConfig, "duplicate impact level", goerr.V("id", i.ID))
		}
		if i.Name == "" {
			return goerr.Wrap(ErrInvalidRiskConfig, "impact name is required", goerr.V("id", i.ID))
		}
		impacts[i.ID] = true
	}

	riskIDs := make(map[string]bool)
	for _, r := range c.Risks {
		if r.ID == "" || r.Name == "" {
			return goerr.Wrap(ErrInvalidRiskConfig, "risk ID and name are required", goerr.V("id", r.ID))
		}
		if riskIDs[r.ID] {
			return goerr.Wrap(ErrInvalidRiskConfig, "duplicate risk", goerr.V("id", r.ID))
		}
		if !likelihoods[r.Likelihood] {
			return goerr.Wrap(ErrInvalidRiskConfig, "risk refers to unknown likelihood",
				goerr.V("id", r.ID), goerr.V("likelihood", r.Likelihood))
		}
		if !impacts[r.Impact] {
			return goerr.Wrap(ErrInvalidRiskConfig, "risk refers to unknown impact",
				goerr.V("id", r.ID), goerr.V("impact", r.Impact))
		}
		riskIDs[r.ID] = true
	}

	for _, p := range c.Trend {
		if p.Period == "" {
			return goerr.Wrap(ErrInvalidRiskConfig, "trend period is required")
		}
		if p.Score < 0 || p.Score > 100 {
			return goerr.Wrap(ErrInvalidRiskConfig, "trend score must be between 0 and 100",
				goerr.V("period", p.Period), goerr.V("score", p.Score))
		}
	}
	return nil
}

// DefaultRiskConfig is used when no app config file is given
func DefaultRiskConfig() *RiskConfig {
	return &RiskConfig{
		Likelihood: []LikelihoodLevel{
			{ID: "rare", Name: "Rare", Score: 1},
			{ID: "unlikely", Name: "Unlikely", Score: 2},
			{ID: "possible", Name: "Possible", Score: 3},
			{ID: "likely", Name: "Likely", Score: 4},
			{ID: "almost-certain", Name: "Almost certain", Score: 5},
		},
		Impact: []ImpactLevel{
			{ID: "negligible", Name: "Negligible", Score: 1},
			{ID: "minor", Name: "Minor", Score: 2},
			{ID: "moderate", Name: "Moderate", Score: 3},
			{ID: "major", Name: "Major", Score: 4},
			{ID: "severe", Name: "Severe", Score: 5},
		},
		Risks: []RiskEntry{
			{ID: "r-001", Name: "Unauthorized access to customer data", Likelihood: "possible", Impact: "severe", Treatment: "mitigate"},
			{ID: "r-002", Name: "Ransomware on file servers", Likelihood: "unlikely", Impact: "major", Treatment: "mitigate"},
			{ID: "r-003", Name: "Loss of key personnel", Likelihood: "possible", Impact: "moderate", Treatment: "accept"},
			{ID: "r-004", Name: "Third party service outage", Likelihood: "likely", Impact: "minor", Treatment: "transfer"},
		},
		Trend: []TrendPoint{
			{Period: "Q1", Score: 42},
			{Period: "Q2", Score: 55},
			{Period: "Q3", Score: 63},
			{Period: "Q4", Score: 71},
		},
	}
}
