package flagstore

import (
	"context"
	"testing"
	"time"

	"github.com/immipath/modflag/moderation/rules"

	"github.com/stretchr/testify/assert"
)

func testFlag(createdBy string, tier rules.Tier, tags ...string) *ModerationFlag {
	var matches []MatchResult
	for _, tag := range tags {
		matches = append(matches, MatchResult{
			Tag:         tag,
			Tier:        tier,
			Confidence:  0.8,
			TriggeredBy: []string{tag},
			Trace:       []string{tag},
		})
	}
	return &ModerationFlag{
		OriginalText: "some content",
		LangCode:     "en",
		Source:       SourceUserInput,
		CreatedBy:    createdBy,
		Matches:      matches,
		HighestTier:  tier,
		Status:       StatusPending,
		History: []HistoryEntry{
			{Action: "created", By: createdBy, Role: "system", Timestamp: time.Now().UTC()},
		},
	}
}

func TestMemFlagStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemFlagStore()

	_, err := s.Get(ctx, 123)
	assert.ErrorIs(err, ErrNotFound)

	f1 := testFlag("user-1", rules.TierMedium, "scam")
	assert.NoError(s.Create(ctx, f1))
	assert.NotZero(f1.ID)

	got, err := s.Get(ctx, f1.ID)
	assert.NoError(err)
	assert.Equal(f1.ID, got.ID)
	assert.Equal(StatusPending, got.Status)
	assert.Len(got.History, 1)

	// mutations to returned copies don't touch the stored record
	got.Status = StatusApproved
	got.History = append(got.History, HistoryEntry{Action: "approved"})
	again, err := s.Get(ctx, f1.ID)
	assert.NoError(err)
	assert.Equal(StatusPending, again.Status)
	assert.Len(again.History, 1)

	assert.NoError(s.Update(ctx, got))
	updated, err := s.Get(ctx, f1.ID)
	assert.NoError(err)
	assert.Equal(StatusApproved, updated.Status)
	assert.Len(updated.History, 2)

	missing := testFlag("user-2", rules.TierLow, "spam")
	missing.ID = 999
	assert.ErrorIs(s.Update(ctx, missing), ErrNotFound)
}

func TestMemFlagStoreSearch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemFlagStore()

	f1 := testFlag("user-1", rules.TierMedium, "scam")
	f1.CreatedAt = time.Now().UTC().Add(-3 * time.Hour)
	f2 := testFlag("user-2", rules.TierHigh, "scam", "fraud")
	f2.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	f3 := testFlag("user-1", rules.TierLow, "spam")
	f3.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	for _, f := range []*ModerationFlag{f1, f2, f3} {
		assert.NoError(s.Create(ctx, f))
	}

	// no filters: newest first
	all, total, err := s.Search(ctx, Query{})
	assert.NoError(err)
	assert.Equal(3, total)
	assert.Equal([]uint64{f3.ID, f2.ID, f1.ID}, []uint64{all[0].ID, all[1].ID, all[2].ID})

	// tag filter matches within Matches
	hits, total, err := s.Search(ctx, Query{Tag: "scam"})
	assert.NoError(err)
	assert.Equal(2, total)
	assert.Len(hits, 2)

	// tier and creator filters
	hits, _, err = s.Search(ctx, Query{Tier: rules.TierHigh})
	assert.NoError(err)
	assert.Len(hits, 1)
	assert.Equal(f2.ID, hits[0].ID)

	hits, _, err = s.Search(ctx, Query{CreatedBy: "user-1"})
	assert.NoError(err)
	assert.Len(hits, 2)

	// pagination
	pg, total, err := s.Search(ctx, Query{Page: 2, PageSize: 2})
	assert.NoError(err)
	assert.Equal(3, total)
	assert.Len(pg, 1)
	assert.Equal(f1.ID, pg[0].ID)

	// soft-deleted flags are hidden by default
	f2.DeletedAt = &f2.CreatedAt
	assert.NoError(s.Update(ctx, f2))
	hits, total, err = s.Search(ctx, Query{})
	assert.NoError(err)
	assert.Equal(2, total)
	hits, total, err = s.Search(ctx, Query{IncludeDeleted: true})
	assert.NoError(err)
	assert.Equal(3, total)
	assert.Len(hits, 3)
}
