package engine

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"

	"github.com/stretchr/testify/assert"
)

func TestExportJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	flag := mustCreate(t, &eng, "a scam offer")
	_, err := eng.Transition(ctx, flag.ID, flagstore.StatusRemoved, "reviewer-7", rules.RoleCompliance)
	assert.NoError(err)

	blob, contentType, err := eng.Export(ctx, flagstore.Query{}, ExportFormatJSON, false)
	assert.NoError(err)
	assert.Equal("application/json", contentType)

	var rows []ExportRow
	assert.NoError(json.Unmarshal(blob, &rows))
	assert.Len(rows, 1)
	assert.Equal("removed", rows[0].Status)
	assert.Equal("medium", rows[0].HighestTier)
	assert.Equal("user-1", rows[0].CreatedBy)
	assert.Equal("reviewer-7", rows[0].ReviewedBy)
	assert.Equal("a scam offer", rows[0].OriginalText)

	// the projection never includes history or reviewer notes
	var raw []map[string]any
	assert.NoError(json.Unmarshal(blob, &raw))
	_, ok := raw[0]["history"]
	assert.False(ok)
	_, ok = raw[0]["reviewerNotes"]
	assert.False(ok)
}

func TestExportDSAR(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	flag := mustCreate(t, &eng, "a scam offer")
	_, err := eng.Transition(ctx, flag.ID, flagstore.StatusApproved, "reviewer-7", rules.RoleCompliance)
	assert.NoError(err)

	blob, _, err := eng.Export(ctx, flagstore.Query{}, ExportFormatJSON, true)
	assert.NoError(err)

	var rows []ExportRow
	assert.NoError(json.Unmarshal(blob, &rows))
	assert.Len(rows, 1)
	assert.Empty(rows[0].OriginalText)
	assert.Equal("us***", rows[0].CreatedBy)
	assert.Equal("re***", rows[0].ReviewedBy)
}

func TestExportCSV(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	mustCreate(t, &eng, "a scam offer")

	blob, contentType, err := eng.Export(ctx, flagstore.Query{}, ExportFormatCSV, false)
	assert.NoError(err)
	assert.Equal("text/csv", contentType)

	recs, err := csv.NewReader(strings.NewReader(string(blob))).ReadAll()
	assert.NoError(err)
	assert.Len(recs, 2)
	assert.Equal("id", recs[0][0])
	assert.Contains(recs[0], "originalText")
	assert.Equal("pending", recs[1][1])

	// DSAR CSV drops the originalText column entirely
	blob, _, err = eng.Export(ctx, flagstore.Query{}, ExportFormatCSV, true)
	assert.NoError(err)
	recs, err = csv.NewReader(strings.NewReader(string(blob))).ReadAll()
	assert.NoError(err)
	assert.NotContains(recs[0], "originalText")
}

func TestExportRowLimit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	eng.Config.ExportMaxRows = 2
	for _, text := range []string{"scam one", "scam two", "scam three"} {
		mustCreate(t, &eng, text)
	}

	_, _, err := eng.Export(ctx, flagstore.Query{}, ExportFormatJSON, false)
	assert.ErrorIs(err, ErrExportLimit)

	// a narrower filter under the cap still works
	eng.Config.ExportMaxRows = 5
	blob, _, err := eng.Export(ctx, flagstore.Query{}, ExportFormatJSON, false)
	assert.NoError(err)
	var rows []ExportRow
	assert.NoError(json.Unmarshal(blob, &rows))
	assert.Len(rows, 3)
}

func TestExportBadFormat(t *testing.T) {
	assert := assert.New(t)
	eng := EngineTestFixture()
	_, _, err := eng.Export(context.Background(), flagstore.Query{}, "xml", false)
	assert.Error(err)
}
