package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/scanner"
)

type CreateOutcome string

const (
	// a new pending flag was persisted
	OutcomeCreated CreateOutcome = "created"
	// content matched no rules; nothing to flag
	OutcomeNoMatch CreateOutcome = "noMatch"
	// the actor hit its daily creation cap for this source; fail-closed, no flag
	OutcomeRateLimited CreateOutcome = "rateLimited"
	// persistence failed; content may or may not be problematic
	OutcomeStoreError CreateOutcome = "storeError"
)

// CreateResult distinguishes "clean content" from rate limiting and from
// store failures, so ingestion callers never have to guess what a nil flag
// meant. Flag is non-nil only for OutcomeCreated; Err only for OutcomeStoreError.
type CreateResult struct {
	Outcome CreateOutcome
	Flag    *flagstore.ModerationFlag
	Err     error
}

// CreateFlag scans content and persists a pending moderation flag when any
// tag rule matches. Creation is capped per actor, per source, per UTC day;
// an actor at its cap is rejected silently to keep a flooding actor from
// drowning the review queue.
func (eng *Engine) CreateFlag(ctx context.Context, text, langCode string, source flagstore.Source, createdBy string) CreateResult {
	counterName := "create/" + string(source)

	if limit := eng.Rules.DailyCreateLimit(string(source)); limit > 0 {
		count, err := eng.Counters.GetDayCount(ctx, counterName, createdBy)
		if err != nil {
			eng.Logger.Error("reading creation counter", "err", err, "createdBy", createdBy, "source", source)
			flagCreateSkippedCount.WithLabelValues(string(OutcomeStoreError)).Inc()
			return CreateResult{Outcome: OutcomeStoreError, Err: fmt.Errorf("reading creation counter: %w", err)}
		}
		if count >= limit {
			eng.Logger.Info("flag creation rate limited", "createdBy", createdBy, "source", source, "count", count, "limit", limit)
			flagCreateSkippedCount.WithLabelValues(string(OutcomeRateLimited)).Inc()
			return CreateResult{Outcome: OutcomeRateLimited}
		}
	}

	matches := scanner.Scan(&eng.Rules, text, langCode)
	if len(matches) == 0 {
		flagCreateSkippedCount.WithLabelValues(string(OutcomeNoMatch)).Inc()
		return CreateResult{Outcome: OutcomeNoMatch}
	}

	highest := scanner.HighestTier(matches)
	autoEscalated := false
	for _, m := range matches {
		if eng.Rules.AutoEscalates(m.Tier) {
			autoEscalated = true
			break
		}
	}

	now := time.Now().UTC()
	flag := &flagstore.ModerationFlag{
		OriginalText:  text,
		LangCode:      langCode,
		Source:        source,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		Matches:       matches,
		HighestTier:   highest,
		AutoEscalated: autoEscalated,
		Status:        flagstore.StatusPending,
		History: []flagstore.HistoryEntry{
			{Action: "created", By: createdBy, Role: "system", Timestamp: now},
		},
	}

	if err := eng.Flags.Create(ctx, flag); err != nil {
		eng.Logger.Error("persisting moderation flag", "err", err, "createdBy", createdBy, "source", source)
		flagCreateSkippedCount.WithLabelValues(string(OutcomeStoreError)).Inc()
		return CreateResult{Outcome: OutcomeStoreError, Err: fmt.Errorf("persisting moderation flag: %w", err)}
	}

	if err := eng.Counters.Increment(ctx, counterName, createdBy); err != nil {
		// the flag exists; a lost counter increment only loosens the limit slightly
		eng.Logger.Error("incrementing creation counter", "err", err, "createdBy", createdBy, "source", source)
	}

	flagCreatedCount.WithLabelValues(string(highest), string(source)).Inc()
	eng.Logger.Info("moderation flag created", "flagID", flag.ID, "tier", highest, "tags", flag.Tags(), "autoEscalated", autoEscalated)
	return CreateResult{Outcome: OutcomeCreated, Flag: flag}
}
