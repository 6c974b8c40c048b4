// Deterministic keyword scanner for moderation tag rules.
//
// Scanning is a pure function over the rule set and content text: no state,
// no I/O, and no errors. Malformed or empty input simply produces no matches.
package scanner

import (
	"strings"

	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/keyword"
	"github.com/immipath/modflag/moderation/rules"
)

// Scan tests every rule's trigger phrases against the text, case-insensitive
// and unicode-folded, and returns one MatchResult per rule with at least one
// trigger found. The langCode is carried for future language-scoped rules and
// does not affect matching yet.
func Scan(rs *rules.RuleSet, text string, langCode string) []flagstore.MatchResult {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	normText := keyword.Normalize(text)
	slugText := keyword.Slugify(text)

	var out []flagstore.MatchResult
	for _, rule := range rs.Rules {
		var triggered, trace []string
		for _, trigger := range rule.Triggers {
			normTrigger := keyword.Normalize(trigger)
			if strings.Contains(normText, normTrigger) {
				triggered = append(triggered, trigger)
				trace = append(trace, normTrigger)
				continue
			}
			// single-word triggers also match with punctuation stripped,
			// catching censor-style obfuscation like "s-c-a-m"
			if !strings.ContainsRune(normTrigger, ' ') {
				if slug := keyword.Slugify(trigger); slug != "" && strings.Contains(slugText, slug) {
					triggered = append(triggered, trigger)
					trace = append(trace, slug)
				}
			}
		}
		if len(triggered) > 0 {
			out = append(out, flagstore.MatchResult{
				Tag:         rule.Tag,
				Tier:        rule.Tier,
				Confidence:  rule.Confidence,
				TriggeredBy: triggered,
				Trace:       trace,
			})
		}
	}
	return out
}

// HighestTier computes the maximum-severity tier across matches, under the
// ordering low < medium < high. Empty input returns the empty tier.
func HighestTier(matches []flagstore.MatchResult) rules.Tier {
	var highest rules.Tier
	for _, m := range matches {
		highest = rules.MaxTier(highest, m.Tier)
	}
	return highest
}
