package engine

import (
	"context"
	"errors"
	"time"

	"github.com/immipath/modflag/moderation/flagstore"
)

// UndoLastAction reverts a reviewed flag to pending and appends a "reverted"
// history entry. The prior review's history entries are preserved; only the
// status-level fields reset. Authorization mirrors Transition: the role must
// be permitted for the flag's tier.
//
// Returns (nil, nil) when there is nothing to undo: flag missing or deleted,
// already pending, or reviewer not permitted.
func (eng *Engine) UndoLastAction(ctx context.Context, flagID uint64, reviewerID, reviewerRole string) (*flagstore.ModerationFlag, error) {
	flag, err := eng.Flags.Get(ctx, flagID)
	if err != nil {
		if errors.Is(err, flagstore.ErrNotFound) {
			return nil, nil
		}
		eng.Logger.Error("loading flag for undo", "err", err, "flagID", flagID)
		return nil, err
	}
	if flag.Deleted() || flag.Status == flagstore.StatusPending {
		return nil, nil
	}
	if !eng.Rules.RoleAllowed(flag.HighestTier, reviewerRole) {
		eng.Logger.Info("undo rejected", "flagID", flagID, "tier", flag.HighestTier, "reviewer", reviewerID, "role", reviewerRole)
		flagActionRejectedCount.WithLabelValues("undo", "unauthorized").Inc()
		return nil, nil
	}

	now := time.Now().UTC()
	flag.Status = flagstore.StatusPending
	flag.ReviewedBy = ""
	flag.ReviewedAt = nil
	flag.ReviewerNotes = ""
	flag.History = append(flag.History, flagstore.HistoryEntry{
		Action:    "reverted",
		By:        reviewerID,
		Role:      reviewerRole,
		Timestamp: now,
	})

	if err := eng.Flags.Update(ctx, flag); err != nil {
		eng.Logger.Error("persisting flag undo", "err", err, "flagID", flagID)
		return nil, err
	}

	flagActionCount.WithLabelValues("reverted").Inc()
	eng.Logger.Info("flag action reverted", "flagID", flagID, "reviewer", reviewerID)
	return flag, nil
}

// SoftDelete hides a flag from default queries and active-flag operations,
// without erasing it. Restricted to superadmin and compliance roles,
// independent of the flag's tier; the "deleted" history entry keeps the
// reviewer context for compliance audit.
func (eng *Engine) SoftDelete(ctx context.Context, flagID uint64, reviewerID, reviewerRole string) (*flagstore.ModerationFlag, error) {
	if !elevatedRole(reviewerRole) {
		flagActionRejectedCount.WithLabelValues("delete", "unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	flag, err := eng.Flags.Get(ctx, flagID)
	if err != nil {
		if errors.Is(err, flagstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		eng.Logger.Error("loading flag for delete", "err", err, "flagID", flagID)
		return nil, err
	}
	if flag.Deleted() {
		// already invisible; don't reveal it
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	flag.DeletedAt = &now
	flag.History = append(flag.History, flagstore.HistoryEntry{
		Action:    "deleted",
		By:        reviewerID,
		Role:      reviewerRole,
		Timestamp: now,
	})

	if err := eng.Flags.Update(ctx, flag); err != nil {
		eng.Logger.Error("persisting flag delete", "err", err, "flagID", flagID)
		return nil, err
	}

	flagActionCount.WithLabelValues("deleted").Inc()
	eng.Logger.Info("flag soft-deleted", "flagID", flagID, "reviewer", reviewerID)
	return flag, nil
}

// Undelete restores a soft-deleted flag. Same role restriction as SoftDelete.
// Undeleting a flag that isn't deleted is a no-op returning (nil, nil).
func (eng *Engine) Undelete(ctx context.Context, flagID uint64, reviewerID, reviewerRole string) (*flagstore.ModerationFlag, error) {
	if !elevatedRole(reviewerRole) {
		flagActionRejectedCount.WithLabelValues("undelete", "unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	flag, err := eng.Flags.Get(ctx, flagID)
	if err != nil {
		if errors.Is(err, flagstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		eng.Logger.Error("loading flag for undelete", "err", err, "flagID", flagID)
		return nil, err
	}
	if !flag.Deleted() {
		return nil, nil
	}

	now := time.Now().UTC()
	flag.DeletedAt = nil
	flag.History = append(flag.History, flagstore.HistoryEntry{
		Action:    "undeleted",
		By:        reviewerID,
		Role:      reviewerRole,
		Timestamp: now,
	})

	if err := eng.Flags.Update(ctx, flag); err != nil {
		eng.Logger.Error("persisting flag undelete", "err", err, "flagID", flagID)
		return nil, err
	}

	flagActionCount.WithLabelValues("undeleted").Inc()
	eng.Logger.Info("flag restored", "flagID", flagID, "reviewer", reviewerID)
	return flag, nil
}
