package engine

import (
	"errors"
	"log/slog"

	"github.com/immipath/modflag/moderation/countstore"
	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"
)

var (
	// role not permitted for the flag's tier, or for the operation
	ErrUnauthorized = errors.New("reviewer role not authorized")
	// target status outside the reviewable set
	ErrInvalidStatus = errors.New("invalid target status")
	// export result set larger than the configured cap
	ErrExportLimit = errors.New("export row limit exceeded")

	ErrNotFound = flagstore.ErrNotFound
)

// Roles which may soft-delete and restore flags, independent of tier.
var ElevatedRoles = []string{rules.RoleSuperadmin, rules.RoleCompliance}

// Engine runs the moderation flag lifecycle: rate-limited creation,
// role-gated review transitions, undo/restore, search, export, and metrics.
//
// All operations are request-scoped and synchronous. Concurrent reviewers
// acting on the same flag race last-write-wins on status, but history entries
// always append, so the audit trail never loses an action.
type Engine struct {
	Logger   *slog.Logger
	Rules    rules.RuleSet
	Counters countstore.CountStore
	Flags    flagstore.FlagStore
	Config   EngineConfig
}

type EngineConfig struct {
	// hard cap on export result sets; exceeded exports fail loudly rather
	// than truncate
	ExportMaxRows int
	// page size used when a search request doesn't specify one
	DefaultPageSize int
	// upper bound on requested page sizes
	MaxPageSize int
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ExportMaxRows:   10_000,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

func elevatedRole(role string) bool {
	for _, r := range ElevatedRoles {
		if r == role {
			return true
		}
	}
	return false
}
