package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"

	"github.com/stretchr/testify/assert"
)

func TestCreateFlagBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()

	res := eng.CreateFlag(ctx, "this is a scam and fraud", "en", flagstore.SourceUserInput, "user-1")
	assert.Equal(OutcomeCreated, res.Outcome)
	assert.NotNil(res.Flag)
	assert.NoError(res.Err)

	flag := res.Flag
	assert.NotZero(flag.ID)
	assert.Len(flag.Matches, 2)
	assert.Equal(rules.TierHigh, flag.HighestTier)
	assert.True(flag.AutoEscalated)
	assert.Equal(flagstore.StatusPending, flag.Status)
	assert.Empty(flag.ReviewedBy)
	assert.Nil(flag.ReviewedAt)
	assert.Len(flag.History, 1)
	assert.Equal("created", flag.History[0].Action)

	stored, err := eng.Flags.Get(ctx, flag.ID)
	assert.NoError(err)
	assert.Equal(flag.ID, stored.ID)
	assert.Equal(rules.TierHigh, stored.HighestTier)
}

func TestCreateFlagNoMatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()

	res := eng.CreateFlag(ctx, "how long does an I-130 petition take", "en", flagstore.SourceUserInput, "user-1")
	assert.Equal(OutcomeNoMatch, res.Outcome)
	assert.Nil(res.Flag)

	// clean content doesn't consume the daily budget
	count, err := eng.Counters.GetDayCount(ctx, "create/userInput", "user-1")
	assert.NoError(err)
	assert.Equal(0, count)

	_, total, err := eng.Flags.Search(ctx, flagstore.Query{})
	assert.NoError(err)
	assert.Equal(0, total)
}

func TestCreateFlagRateLimit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	eng.Rules.DailyCreateLimits["userInput"] = 3

	for i := 0; i < 3; i++ {
		res := eng.CreateFlag(ctx, fmt.Sprintf("scam number %d", i), "en", flagstore.SourceUserInput, "user-1")
		assert.Equal(OutcomeCreated, res.Outcome)
	}

	// over the cap: rejected silently, nothing persisted
	res := eng.CreateFlag(ctx, "yet another scam", "en", flagstore.SourceUserInput, "user-1")
	assert.Equal(OutcomeRateLimited, res.Outcome)
	assert.Nil(res.Flag)

	_, total, err := eng.Flags.Search(ctx, flagstore.Query{CreatedBy: "user-1"})
	assert.NoError(err)
	assert.Equal(3, total)

	// the limit is per actor and per source
	res = eng.CreateFlag(ctx, "a scam from someone else", "en", flagstore.SourceUserInput, "user-2")
	assert.Equal(OutcomeCreated, res.Outcome)
	res = eng.CreateFlag(ctx, "model output mentioning a scam", "en", flagstore.SourceAIResponse, "user-1")
	assert.Equal(OutcomeCreated, res.Outcome)
}

func TestCreateFlagTierComputation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()

	res := eng.CreateFlag(ctx, "buy now, it's not a scam", "en", flagstore.SourceAIResponse, "bot-1")
	assert.Equal(OutcomeCreated, res.Outcome)
	assert.Equal(rules.TierMedium, res.Flag.HighestTier)
	assert.False(res.Flag.AutoEscalated)
	assert.Equal([]string{"spam", "scam"}, res.Flag.Tags())
}
