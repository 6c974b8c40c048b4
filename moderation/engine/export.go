package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/immipath/modflag/moderation/flagstore"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

// ExportRow is the allow-listed projection of a flag for export. Raw match
// traces, reviewer notes, and full history never leave the store through this
// path. OriginalText is dropped entirely for DSAR exports, and actor
// identifiers are masked.
type ExportRow struct {
	ID            uint64 `json:"id"`
	Status        string `json:"status"`
	HighestTier   string `json:"highestTier"`
	Tags          string `json:"tags"`
	Source        string `json:"source"`
	LangCode      string `json:"langCode"`
	AutoEscalated bool   `json:"autoEscalated"`
	CreatedBy     string `json:"createdBy"`
	CreatedAt     string `json:"createdAt"`
	ReviewedBy    string `json:"reviewedBy,omitempty"`
	ReviewedAt    string `json:"reviewedAt,omitempty"`
	OriginalText  string `json:"originalText,omitempty"`
}

// Export serializes all flags matching the filters to CSV or JSON. The result
// set is capped: exceeding Config.ExportMaxRows is an explicit error rather
// than a silent truncation. When dsar is set, PII fields are removed and
// actor identifiers partially redacted.
func (eng *Engine) Export(ctx context.Context, q flagstore.Query, format string, dsar bool) ([]byte, string, error) {
	if format != ExportFormatCSV && format != ExportFormatJSON {
		return nil, "", fmt.Errorf("unsupported export format: %q", format)
	}

	// exports read the full filtered set, unpaginated
	q.Page = 0
	q.PageSize = 0
	flags, total, err := eng.Flags.Search(ctx, q)
	if err != nil {
		eng.Logger.Error("flag export query", "err", err)
		return nil, "", err
	}
	if max := eng.Config.ExportMaxRows; max > 0 && total > max {
		return nil, "", fmt.Errorf("%w: %d rows matched, limit is %d", ErrExportLimit, total, max)
	}

	rows := make([]ExportRow, len(flags))
	for i, f := range flags {
		rows[i] = exportRow(f, dsar)
	}

	exportCount.WithLabelValues(format, strconv.FormatBool(dsar)).Inc()

	switch format {
	case ExportFormatCSV:
		blob, err := marshalCSV(rows, dsar)
		return blob, "text/csv", err
	default:
		blob, err := json.MarshalIndent(rows, "", "  ")
		return blob, "application/json", err
	}
}

func exportRow(f *flagstore.ModerationFlag, dsar bool) ExportRow {
	row := ExportRow{
		ID:            f.ID,
		Status:        string(f.Status),
		HighestTier:   string(f.HighestTier),
		Tags:          strings.Join(f.Tags(), " "),
		Source:        string(f.Source),
		LangCode:      f.LangCode,
		AutoEscalated: f.AutoEscalated,
		CreatedBy:     f.CreatedBy,
		CreatedAt:     f.CreatedAt.UTC().Format(time.RFC3339),
		ReviewedBy:    f.ReviewedBy,
		OriginalText:  f.OriginalText,
	}
	if f.ReviewedAt != nil {
		row.ReviewedAt = f.ReviewedAt.UTC().Format(time.RFC3339)
	}
	if dsar {
		row.OriginalText = ""
		row.CreatedBy = maskIdentifier(f.CreatedBy)
		row.ReviewedBy = maskIdentifier(f.ReviewedBy)
	}
	return row
}

// maskIdentifier keeps a short recognizable prefix and redacts the rest.
func maskIdentifier(id string) string {
	if id == "" {
		return ""
	}
	keep := 2
	if len(id) <= keep {
		return "***"
	}
	return id[:keep] + "***"
}

func marshalCSV(rows []ExportRow, dsar bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "status", "highestTier", "tags", "source", "langCode", "autoEscalated", "createdBy", "createdAt", "reviewedBy", "reviewedAt"}
	if !dsar {
		header = append(header, "originalText")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatUint(r.ID, 10),
			r.Status,
			r.HighestTier,
			r.Tags,
			r.Source,
			r.LangCode,
			strconv.FormatBool(r.AutoEscalated),
			r.CreatedBy,
			r.CreatedAt,
			r.ReviewedBy,
			r.ReviewedAt,
		}
		if !dsar {
			rec = append(rec, r.OriginalText)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
