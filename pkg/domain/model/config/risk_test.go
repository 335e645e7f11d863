package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/domain/model/config"
)

func TestDefaultRiskConfigIsValid(t *testing.T) {
	gt.NoError(t, config.DefaultRiskConfig().Validate())
}

func TestRiskConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *config.RiskConfig)
	}{
		{
			name: "duplicate likelihood",
			modify: func(c *config.RiskConfig) {
				c.Likelihood = append(c.Likelihood, c.Likelihood[0])
			},
		},
		{
			name: "invalid impact ID",
			modify: func(c *config.RiskConfig) {
				c.Impact[0].ID = "Not Valid"
			},
		},
		{
			name: "risk with unknown likelihood",
			modify: func(c *config.RiskConfig) {
				c.Risks[0].Likelihood = "never"
			},
		},
		{
			name: "risk with unknown impact",
			modify: func(c *config.RiskConfig) {
				c.Risks[0].Impact = "catastrophic"
			},
		},
		{
			name: "duplicate risk",
			modify: func(c *config.RiskConfig) {
				c.Risks[1].ID = c.Risks[0].ID
			},
		},
		{
			name: "trend score out of range",
			modify: func(c *config.RiskConfig) {
				c.Trend[0].Score = 120
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.DefaultRiskConfig()
			tc.modify(c)
			gt.Error(t, c.Validate())
		})
	}
}
