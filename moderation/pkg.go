package moderation

import (
	"github.com/immipath/modflag/moderation/engine"
	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"
)

type Engine = engine.Engine
type EngineConfig = engine.EngineConfig
type CreateResult = engine.CreateResult
type SearchResults = engine.SearchResults
type SummaryStats = engine.SummaryStats
type ReviewerStats = engine.ReviewerStats

type ModerationFlag = flagstore.ModerationFlag
type MatchResult = flagstore.MatchResult
type HistoryEntry = flagstore.HistoryEntry

type RuleSet = rules.RuleSet
type TagRule = rules.TagRule
type Tier = rules.Tier

var (
	OutcomeCreated     = engine.OutcomeCreated
	OutcomeNoMatch     = engine.OutcomeNoMatch
	OutcomeRateLimited = engine.OutcomeRateLimited
	OutcomeStoreError  = engine.OutcomeStoreError

	ErrUnauthorized  = engine.ErrUnauthorized
	ErrInvalidStatus = engine.ErrInvalidStatus
	ErrExportLimit   = engine.ErrExportLimit
	ErrNotFound      = engine.ErrNotFound

	StatusPending   = flagstore.StatusPending
	StatusApproved  = flagstore.StatusApproved
	StatusRemoved   = flagstore.StatusRemoved
	StatusEscalated = flagstore.StatusEscalated

	SourceUserInput  = flagstore.SourceUserInput
	SourceAIResponse = flagstore.SourceAIResponse

	TierLow    = rules.TierLow
	TierMedium = rules.TierMedium
	TierHigh   = rules.TierHigh
)
