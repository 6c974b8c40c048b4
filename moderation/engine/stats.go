package engine

import (
	"context"
	"math"

	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"
)

type SummaryStats struct {
	TotalFlags            int                `json:"totalFlags"`
	ByTag                 map[string]int     `json:"byTag"`
	ByTier                map[rules.Tier]int `json:"byTier"`
	AutoEscalated         int                `json:"autoEscalated"`
	EscalationRatePercent int                `json:"escalationRatePercent"`
}

// Summary tallies all non-deleted flags in a single pass. Tag counts are per
// match, not per flag: a flag with two matches of the same tag counts twice.
// Tier counts are by highestTier.
func (eng *Engine) Summary(ctx context.Context) (*SummaryStats, error) {
	flags, _, err := eng.Flags.Search(ctx, flagstore.Query{})
	if err != nil {
		eng.Logger.Error("summary query", "err", err)
		return nil, err
	}

	out := SummaryStats{
		ByTag:  make(map[string]int),
		ByTier: make(map[rules.Tier]int),
	}
	for _, f := range flags {
		out.TotalFlags++
		for _, m := range f.Matches {
			out.ByTag[m.Tag]++
		}
		out.ByTier[f.HighestTier]++
		if f.AutoEscalated {
			out.AutoEscalated++
		}
	}
	if out.TotalFlags > 0 {
		out.EscalationRatePercent = int(math.Round(float64(out.AutoEscalated) / float64(out.TotalFlags) * 100))
	}
	return &out, nil
}

type ReviewerStats struct {
	TotalReviewed       int                `json:"totalReviewed"`
	ByTier              map[rules.Tier]int `json:"byTier"`
	AvgResolutionTimeMs int64              `json:"avgResolutionTimeMs"`
	LoadScore           int                `json:"loadScore"`
}

var tierWeights = map[rules.Tier]int{
	rules.TierLow:    1,
	rules.TierMedium: 2,
	rules.TierHigh:   3,
}

const resolutionTargetMs = 3_600_000 // one hour

// ReviewerStats scores one reviewer's load over the flags they reviewed:
// tier-weighted volume (weights 1/2/3, normalized by total*3, capped at 1)
// blended 60/40 with resolution speed against a one-hour target, scaled to
// 0-100. Zero when the reviewer has no reviewed flags or no resolution data.
func (eng *Engine) ReviewerStats(ctx context.Context, reviewerID string) (*ReviewerStats, error) {
	flags, _, err := eng.Flags.Search(ctx, flagstore.Query{ReviewedBy: reviewerID})
	if err != nil {
		eng.Logger.Error("reviewer stats query", "err", err, "reviewer", reviewerID)
		return nil, err
	}

	out := ReviewerStats{
		ByTier: make(map[rules.Tier]int),
	}
	weighted := 0
	var totalResolutionMs, resolved int64
	for _, f := range flags {
		out.TotalReviewed++
		out.ByTier[f.HighestTier]++
		weighted += tierWeights[f.HighestTier]
		if f.ReviewedAt != nil && !f.CreatedAt.IsZero() {
			totalResolutionMs += f.ReviewedAt.Sub(f.CreatedAt).Milliseconds()
			resolved++
		}
	}
	if out.TotalReviewed == 0 || resolved == 0 {
		return &out, nil
	}

	out.AvgResolutionTimeMs = totalResolutionMs / resolved

	tierScore := float64(weighted) / float64(out.TotalReviewed*3)
	if tierScore > 1 {
		tierScore = 1
	}
	speedScore := 1 - float64(out.AvgResolutionTimeMs)/resolutionTargetMs
	if speedScore < 0 {
		speedScore = 0
	}
	out.LoadScore = int(math.Round((0.6*tierScore + 0.4*speedScore) * 100))
	return &out, nil
}
