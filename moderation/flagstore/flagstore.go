package flagstore

import (
	"context"
	"errors"

	"github.com/immipath/modflag/moderation/rules"
)

var ErrNotFound = errors.New("moderation flag not found")

// Search filters. Zero values mean "no filter". Soft-deleted flags are
// excluded unless IncludeDeleted is set.
type Query struct {
	Status     Status
	Tier       rules.Tier
	Tag        string
	ReviewedBy string
	CreatedBy  string

	IncludeDeleted bool

	// 1-based page. PageSize <= 0 disables pagination (used by export and
	// metrics, which need the full result set).
	Page     int
	PageSize int
}

// FlagStore owns moderation flag persistence. Implementations return deep
// copies; the authoritative record changes only via Create and Update.
type FlagStore interface {
	// Create persists a new flag and assigns its ID.
	Create(ctx context.Context, flag *ModerationFlag) error
	// Get returns a flag by ID, including soft-deleted flags. Callers decide
	// whether a deleted flag is visible for their operation.
	Get(ctx context.Context, id uint64) (*ModerationFlag, error)
	// Update overwrites the stored record for flag.ID.
	Update(ctx context.Context, flag *ModerationFlag) error
	// Search returns one page of matching flags, newest-created-first, plus
	// the total number of matching records.
	Search(ctx context.Context, q Query) ([]*ModerationFlag, int, error)
}
