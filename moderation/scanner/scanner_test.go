package scanner

import (
	"testing"

	"github.com/immipath/modflag/moderation/rules"

	"github.com/stretchr/testify/assert"
)

func testRules() rules.RuleSet {
	return rules.RuleSet{
		Rules: []rules.TagRule{
			{Tag: "scam", Tier: rules.TierMedium, Confidence: 0.8, Triggers: []string{"scam", "guaranteed visa"}},
			{Tag: "fraud", Tier: rules.TierHigh, Confidence: 0.9, Triggers: []string{"fraud"}},
		},
	}
}

func TestScanBasics(t *testing.T) {
	assert := assert.New(t)
	rs := testRules()

	// one rule hit
	matches := Scan(&rs, "that sounds like a SCAM to me", "en")
	assert.Len(matches, 1)
	assert.Equal("scam", matches[0].Tag)
	assert.Equal(rules.TierMedium, matches[0].Tier)
	assert.Equal([]string{"scam"}, matches[0].TriggeredBy)
	assert.Equal([]string{"scam"}, matches[0].Trace)

	// two rules hit; highest tier is high
	matches = Scan(&rs, "this is a scam and fraud", "en")
	assert.Len(matches, 2)
	assert.Equal(rules.TierHigh, HighestTier(matches))

	// multiple triggers of the same rule collapse into one match
	matches = Scan(&rs, "a scam offering a guaranteed visa", "en")
	assert.Len(matches, 1)
	assert.Equal([]string{"scam", "guaranteed visa"}, matches[0].TriggeredBy)

	// no hits
	assert.Empty(Scan(&rs, "legitimate question about form I-485", "en"))
}

func TestScanEmptyInput(t *testing.T) {
	assert := assert.New(t)
	rs := testRules()

	assert.Empty(Scan(&rs, "", "en"))
	assert.Empty(Scan(&rs, "   \t\n", "en"))
	assert.Empty(HighestTier(nil))
}

func TestScanNormalization(t *testing.T) {
	assert := assert.New(t)
	rs := testRules()

	// accented and mixed-case variants still match
	matches := Scan(&rs, "Guaranteéd VISA, very legit", "en")
	assert.Len(matches, 1)
	assert.Equal("scam", matches[0].Tag)

	// punctuation-obscured single words match via the slug pass
	matches = Scan(&rs, "this is f-r-a-u-d", "en")
	assert.Len(matches, 1)
	assert.Equal("fraud", matches[0].Tag)
}
