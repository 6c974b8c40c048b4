package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierOrdering(t *testing.T) {
	assert := assert.New(t)

	assert.True(TierLow.Rank() < TierMedium.Rank())
	assert.True(TierMedium.Rank() < TierHigh.Rank())
	assert.Equal(TierHigh, MaxTier(TierLow, TierHigh))
	assert.Equal(TierHigh, MaxTier(TierHigh, TierMedium))
	assert.Equal(TierMedium, MaxTier(TierMedium, TierLow))
	assert.False(Tier("bogus").Valid())
}

func TestRoleAllowed(t *testing.T) {
	assert := assert.New(t)

	rs := DefaultRules()
	assert.True(rs.RoleAllowed(TierLow, RoleModerator))
	assert.True(rs.RoleAllowed(TierLow, RoleSuperadmin))
	assert.False(rs.RoleAllowed(TierHigh, RoleModerator))
	assert.False(rs.RoleAllowed(TierHigh, RoleCompliance))
	assert.True(rs.RoleAllowed(TierHigh, RoleSuperadmin))
	assert.False(rs.RoleAllowed(TierMedium, "intern"))
}

func TestLoadFromFileJSON(t *testing.T) {
	assert := assert.New(t)

	blob := `{
		"rules": [
			{"tag": "scam", "tier": "medium", "confidence": 0.8, "triggers": ["scam"]},
			{"tag": "fraud", "tier": "high", "confidence": 0.9, "triggers": ["fraud"]}
		],
		"tierRoles": {
			"medium": ["compliance", "superadmin"],
			"high": ["superadmin"]
		},
		"autoEscalateTiers": {"high": true},
		"dailyCreateLimits": {"userInput": 50}
	}`
	p := filepath.Join(t.TempDir(), "rules.json")
	assert.NoError(os.WriteFile(p, []byte(blob), 0644))

	var rs RuleSet
	assert.NoError(rs.LoadFromFileJSON(p))
	assert.Len(rs.Rules, 2)
	assert.True(rs.AutoEscalates(TierHigh))
	assert.False(rs.AutoEscalates(TierMedium))
	assert.Equal(50, rs.DailyCreateLimit("userInput"))
	assert.Equal(0, rs.DailyCreateLimit("aiResponse"))
	assert.True(rs.RoleAllowed(TierHigh, RoleSuperadmin))
	assert.False(rs.RoleAllowed(TierHigh, RoleModerator))
}

func TestLoadFromFileJSONRejectsBadConfig(t *testing.T) {
	assert := assert.New(t)

	blob := `{"rules": [{"tag": "scam", "tier": "severe", "triggers": ["scam"]}]}`
	p := filepath.Join(t.TempDir(), "rules.json")
	assert.NoError(os.WriteFile(p, []byte(blob), 0644))

	var rs RuleSet
	assert.Error(rs.LoadFromFileJSON(p))
}

func TestDefaultRulesValid(t *testing.T) {
	rs := DefaultRules()
	if err := rs.Validate(); err != nil {
		t.Fatal(err)
	}
}
