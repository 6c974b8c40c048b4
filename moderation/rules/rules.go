package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Severity tier for a tag. Ordering is low < medium < high.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Reviewer roles, as injected by the upstream auth service.
const (
	RoleModerator  = "moderator"
	RoleCompliance = "compliance"
	RoleSuperadmin = "superadmin"
)

func (t Tier) Rank() int {
	switch t {
	case TierLow:
		return 1
	case TierMedium:
		return 2
	case TierHigh:
		return 3
	default:
		return 0
	}
}

func (t Tier) Valid() bool {
	return t.Rank() > 0
}

// MaxTier returns the more severe of the two tiers.
func MaxTier(a, b Tier) Tier {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// A single tag rule: any trigger phrase occurring in content produces a match
// carrying the rule's tag, tier, and confidence.
type TagRule struct {
	Tag        string   `json:"tag"`
	Tier       Tier     `json:"tier"`
	Confidence float64  `json:"confidence"`
	Triggers   []string `json:"triggers"`
}

// Static moderation policy configuration: tag rules, which roles may review
// each tier, which tiers auto-escalate, and per-source daily creation limits.
//
// Loaded once at startup and treated as read-only afterwards.
type RuleSet struct {
	Rules             []TagRule         `json:"rules"`
	TierRoles         map[Tier][]string `json:"tierRoles"`
	AutoEscalateTiers map[Tier]bool     `json:"autoEscalateTiers"`
	DailyCreateLimits map[string]int    `json:"dailyCreateLimits"`
}

// RoleAllowed indicates whether a reviewer role may act on flags of the given tier.
func (rs *RuleSet) RoleAllowed(tier Tier, role string) bool {
	for _, r := range rs.TierRoles[tier] {
		if r == role {
			return true
		}
	}
	return false
}

func (rs *RuleSet) AutoEscalates(tier Tier) bool {
	return rs.AutoEscalateTiers[tier]
}

// DailyCreateLimit returns the per-actor daily flag creation cap for a content
// source. Zero or negative means unlimited.
func (rs *RuleSet) DailyCreateLimit(source string) int {
	return rs.DailyCreateLimits[source]
}

func (rs *RuleSet) Validate() error {
	for _, rule := range rs.Rules {
		if rule.Tag == "" {
			return fmt.Errorf("tag rule with empty tag")
		}
		if !rule.Tier.Valid() {
			return fmt.Errorf("tag rule %q: unknown tier %q", rule.Tag, rule.Tier)
		}
		if len(rule.Triggers) == 0 {
			return fmt.Errorf("tag rule %q: no trigger phrases", rule.Tag)
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			return fmt.Errorf("tag rule %q: confidence %f out of range", rule.Tag, rule.Confidence)
		}
	}
	for tier := range rs.TierRoles {
		if !tier.Valid() {
			return fmt.Errorf("tier role config: unknown tier %q", tier)
		}
	}
	return nil
}

// LoadFromFileJSON parses a full RuleSet from a JSON config file, replacing
// any existing configuration.
func (rs *RuleSet) LoadFromFileJSON(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var loaded RuleSet
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	*rs = loaded
	return nil
}

// DefaultRules is the baseline policy shipped with the service. Deployments
// override it with a JSON config file.
func DefaultRules() RuleSet {
	return RuleSet{
		Rules: []TagRule{
			{
				Tag:        "spam",
				Tier:       TierLow,
				Confidence: 0.6,
				Triggers:   []string{"buy now", "limited offer", "click here"},
			},
			{
				Tag:        "scam",
				Tier:       TierMedium,
				Confidence: 0.8,
				Triggers:   []string{"scam", "wire transfer fee", "guaranteed visa"},
			},
			{
				Tag:        "visa-misinformation",
				Tier:       TierMedium,
				Confidence: 0.7,
				Triggers:   []string{"no interview required", "skip the queue", "buy a green card"},
			},
			{
				Tag:        "fraud",
				Tier:       TierHigh,
				Confidence: 0.9,
				Triggers:   []string{"fraud", "fake passport", "forged document"},
			},
			{
				Tag:        "harassment",
				Tier:       TierHigh,
				Confidence: 0.85,
				Triggers:   []string{"go back to your country", "deport you"},
			},
		},
		TierRoles: map[Tier][]string{
			TierLow:    {RoleModerator, RoleCompliance, RoleSuperadmin},
			TierMedium: {RoleCompliance, RoleSuperadmin},
			TierHigh:   {RoleSuperadmin},
		},
		AutoEscalateTiers: map[Tier]bool{
			TierHigh: true,
		},
		DailyCreateLimits: map[string]int{
			"userInput":  100,
			"aiResponse": 200,
		},
	}
}
