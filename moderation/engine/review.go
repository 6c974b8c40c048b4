package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/immipath/modflag/moderation/flagstore"
)

// Transition applies a reviewer decision to an active flag.
//
// Allowed target statuses are approved, removed, and escalated; a return to
// pending only happens through UndoLastAction. The reviewer's role must be in
// the allowed set for the flag's stored highestTier, regardless of target
// status. Soft-deleted flags are reported as not found rather than as
// forbidden, so their existence doesn't leak.
//
// Repeating a transition with the same target status appends a second history
// entry: every action is audited, with no dedup.
func (eng *Engine) Transition(ctx context.Context, flagID uint64, newStatus flagstore.Status, reviewerID, reviewerRole string) (*flagstore.ModerationFlag, error) {
	switch newStatus {
	case flagstore.StatusApproved, flagstore.StatusRemoved, flagstore.StatusEscalated:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	flag, err := eng.Flags.Get(ctx, flagID)
	if err != nil {
		if errors.Is(err, flagstore.ErrNotFound) {
			flagActionRejectedCount.WithLabelValues("transition", "notfound").Inc()
			return nil, ErrNotFound
		}
		eng.Logger.Error("loading flag for transition", "err", err, "flagID", flagID)
		return nil, err
	}
	if flag.Deleted() {
		flagActionRejectedCount.WithLabelValues("transition", "notfound").Inc()
		return nil, ErrNotFound
	}

	if !eng.Rules.RoleAllowed(flag.HighestTier, reviewerRole) {
		eng.Logger.Info("transition rejected", "flagID", flagID, "tier", flag.HighestTier, "reviewer", reviewerID, "role", reviewerRole)
		flagActionRejectedCount.WithLabelValues("transition", "unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	flag.Status = newStatus
	flag.ReviewedBy = reviewerID
	flag.ReviewedAt = &now
	flag.History = append(flag.History, flagstore.HistoryEntry{
		Action:    string(newStatus),
		By:        reviewerID,
		Role:      reviewerRole,
		Timestamp: now,
	})

	if err := eng.Flags.Update(ctx, flag); err != nil {
		eng.Logger.Error("persisting flag transition", "err", err, "flagID", flagID)
		return nil, err
	}

	flagActionCount.WithLabelValues(string(newStatus)).Inc()
	eng.Logger.Info("flag transitioned", "flagID", flagID, "status", newStatus, "reviewer", reviewerID)
	return flag, nil
}
