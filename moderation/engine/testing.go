package engine

import (
	"log/slog"

	"github.com/immipath/modflag/moderation/countstore"
	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"
)

// EngineTestFixture returns an engine wired to in-memory stores with a small
// fixed rule set, for tests.
func EngineTestFixture() Engine {
	rs := rules.RuleSet{
		Rules: []rules.TagRule{
			{Tag: "spam", Tier: rules.TierLow, Confidence: 0.6, Triggers: []string{"buy now"}},
			{Tag: "scam", Tier: rules.TierMedium, Confidence: 0.8, Triggers: []string{"scam"}},
			{Tag: "fraud", Tier: rules.TierHigh, Confidence: 0.9, Triggers: []string{"fraud"}},
		},
		TierRoles: map[rules.Tier][]string{
			rules.TierLow:    {rules.RoleModerator, rules.RoleCompliance, rules.RoleSuperadmin},
			rules.TierMedium: {rules.RoleCompliance, rules.RoleSuperadmin},
			rules.TierHigh:   {rules.RoleSuperadmin},
		},
		AutoEscalateTiers: map[rules.Tier]bool{
			rules.TierHigh: true,
		},
		DailyCreateLimits: map[string]int{
			"userInput":  100,
			"aiResponse": 100,
		},
	}
	return Engine{
		Logger:   slog.Default(),
		Rules:    rs,
		Counters: countstore.NewMemCountStore(),
		Flags:    flagstore.NewMemFlagStore(),
		Config:   DefaultEngineConfig(),
	}
}
