package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlannerConfig() PlannerConfig {
	return PlannerConfig{
		ServiceLevel:        0.95,
		DefaultLeadTimeDays: 21,
		HoldingCostRate:     0.25,
		OrderCost:           50,
		DemandWindowMonths:  24,
		MinHistoryMonths:    6,
		HoldoutMonths:       3,
		MinTestMonths:       2,
		ForecastHorizon:     12,
		DemandRateMonths:    1,
		MovingAverageWindow: 3,
		SeasonalPeriod:      12,
	}
}

func TestPlannerConfigValid(t *testing.T) {
	require.NoError(t, validPlannerConfig().Validate())
}

func TestPlannerConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PlannerConfig)
	}{
		{"service level zero", func(c *PlannerConfig) { c.ServiceLevel = 0 }},
		{"service level one", func(c *PlannerConfig) { c.ServiceLevel = 1 }},
		{"negative lead time", func(c *PlannerConfig) { c.DefaultLeadTimeDays = -1 }},
		{"min history too small", func(c *PlannerConfig) { c.MinHistoryMonths = 1 }},
		{"holdout below min test", func(c *PlannerConfig) { c.HoldoutMonths = 1 }},
		{"horizon too short", func(c *PlannerConfig) { c.ForecastHorizon = 2 }},
		{"demand rate months zero", func(c *PlannerConfig) { c.DemandRateMonths = 0 }},
		{"demand rate beyond horizon", func(c *PlannerConfig) { c.DemandRateMonths = 13 }},
		{"seasonal period too short", func(c *PlannerConfig) { c.SeasonalPeriod = 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validPlannerConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid_configuration")
		})
	}
}

func TestPlannerConfigDoesNotRejectZeroCosts(t *testing.T) {
	// Zero cost inputs are not configuration errors: they take the documented
	// degenerate branch in the order-quantity math instead.
	cfg := validPlannerConfig()
	cfg.OrderCost = 0
	cfg.HoldingCostRate = 0
	assert.NoError(t, cfg.Validate())
}
