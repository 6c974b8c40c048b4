package flagstore

import (
	"time"

	"github.com/immipath/modflag/moderation/rules"
)

// Where the flagged content came from.
type Source string

const (
	SourceUserInput  Source = "userInput"
	SourceAIResponse Source = "aiResponse"
)

func (s Source) Valid() bool {
	return s == SourceUserInput || s == SourceAIResponse
}

// Review status of a flag. Flags are always created pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRemoved   Status = "removed"
	StatusEscalated Status = "escalated"
)

// One tag-rule hit against scanned content.
type MatchResult struct {
	Tag        string     `json:"tag"`
	Tier       rules.Tier `json:"tier"`
	Confidence float64    `json:"confidence"`
	// trigger phrases from the rule which were found in the content
	TriggeredBy []string `json:"triggeredBy"`
	// the matched substrings as they appeared in the normalized content
	Trace []string `json:"trace"`
}

// Audit history entry. History is append-only: every status change, undo,
// delete, and undelete appends exactly one entry, and entries are never
// rewritten or removed.
type HistoryEntry struct {
	Action    string    `json:"action"`
	By        string    `json:"by"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// A persisted moderation flag, the central entity of the review engine.
//
// OriginalText, LangCode, Source, CreatedBy, CreatedAt, Matches,
// HighestTier, and AutoEscalated are immutable after creation. HighestTier
// is computed once from Matches at creation and never recomputed.
type ModerationFlag struct {
	ID            uint64         `json:"id"`
	OriginalText  string         `json:"originalText"`
	LangCode      string         `json:"langCode"`
	Source        Source         `json:"source"`
	CreatedBy     string         `json:"createdBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	Matches       []MatchResult  `json:"matches"`
	HighestTier   rules.Tier     `json:"highestTier"`
	AutoEscalated bool           `json:"autoEscalated"`
	Status        Status         `json:"status"`
	ReviewedBy    string         `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time     `json:"reviewedAt,omitempty"`
	ReviewerNotes string         `json:"reviewerNotes,omitempty"`
	DeletedAt     *time.Time     `json:"deletedAt,omitempty"`
	History       []HistoryEntry `json:"history"`
}

// Deleted indicates the flag is soft-deleted and hidden from default queries.
func (f *ModerationFlag) Deleted() bool {
	return f.DeletedAt != nil
}

// Tags returns the distinct matched tags, in match order.
func (f *ModerationFlag) Tags() []string {
	var out []string
	seen := make(map[string]bool, len(f.Matches))
	for _, m := range f.Matches {
		if !seen[m.Tag] {
			seen[m.Tag] = true
			out = append(out, m.Tag)
		}
	}
	return out
}

// Clone returns a deep copy. The store is the single source of truth and only
// hands out copies; callers mutate records exclusively through store updates.
func (f *ModerationFlag) Clone() *ModerationFlag {
	out := *f
	out.Matches = make([]MatchResult, len(f.Matches))
	for i, m := range f.Matches {
		out.Matches[i] = m
		out.Matches[i].TriggeredBy = append([]string(nil), m.TriggeredBy...)
		out.Matches[i].Trace = append([]string(nil), m.Trace...)
	}
	out.History = append([]HistoryEntry(nil), f.History...)
	if f.ReviewedAt != nil {
		t := *f.ReviewedAt
		out.ReviewedAt = &t
	}
	if f.DeletedAt != nil {
		t := *f.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}
