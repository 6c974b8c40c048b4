package engine

import (
	"context"

	"github.com/immipath/modflag/moderation/flagstore"
)

type SearchResults struct {
	Flags        []*flagstore.ModerationFlag `json:"flags"`
	Page         int                         `json:"page"`
	TotalPages   int                         `json:"totalPages"`
	TotalResults int                         `json:"totalResults"`
}

// Search returns one page of flags matching the filters, newest first.
// Pagination is offset-based; pages may shift slightly under concurrent
// writes, which is acceptable for a review queue.
func (eng *Engine) Search(ctx context.Context, q flagstore.Query) (*SearchResults, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = eng.Config.DefaultPageSize
	}
	if q.PageSize > eng.Config.MaxPageSize {
		q.PageSize = eng.Config.MaxPageSize
	}

	flags, total, err := eng.Flags.Search(ctx, q)
	if err != nil {
		eng.Logger.Error("flag search", "err", err)
		return nil, err
	}

	totalPages := total / q.PageSize
	if total%q.PageSize != 0 {
		totalPages++
	}
	if flags == nil {
		flags = []*flagstore.ModerationFlag{}
	}
	return &SearchResults{
		Flags:        flags,
		Page:         q.Page,
		TotalPages:   totalPages,
		TotalResults: total,
	}, nil
}
