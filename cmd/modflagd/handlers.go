package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/immipath/modflag/moderation/engine"
	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"

	"github.com/labstack/echo/v4"
	otel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("modflagd")

func parseSearchQuery(e echo.Context) (flagstore.Query, error) {
	q := flagstore.Query{
		Status:     flagstore.Status(strings.TrimSpace(e.QueryParam("status"))),
		Tier:       rules.Tier(strings.TrimSpace(e.QueryParam("tier"))),
		Tag:        strings.TrimSpace(e.QueryParam("tag")),
		ReviewedBy: strings.TrimSpace(e.QueryParam("reviewedBy")),
		CreatedBy:  strings.TrimSpace(e.QueryParam("createdBy")),
	}
	if q.Tier != "" && !q.Tier.Valid() {
		return q, &echo.HTTPError{Code: 400, Message: fmt.Sprintf("invalid value for 'tier': %s", q.Tier)}
	}
	if d := strings.TrimSpace(e.QueryParam("includeDeleted")); d != "" {
		v, err := strconv.ParseBool(d)
		if err != nil {
			return q, &echo.HTTPError{Code: 400, Message: fmt.Sprintf("invalid value for 'includeDeleted': %s", err)}
		}
		q.IncludeDeleted = v
	}
	if p := strings.TrimSpace(e.QueryParam("page")); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v < 1 {
			return q, &echo.HTTPError{Code: 400, Message: "invalid value for 'page'"}
		}
		q.Page = v
	}
	if l := strings.TrimSpace(e.QueryParam("limit")); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			return q, &echo.HTTPError{Code: 400, Message: "invalid value for 'limit'"}
		}
		q.PageSize = v
	}
	return q, nil
}

func (s *Server) handleSearchFlags(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleSearchFlags")
	defer span.End()

	q, err := parseSearchQuery(e)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("status", string(q.Status)), attribute.String("tag", q.Tag))

	out, err := s.engine.Search(ctx, q)
	if err != nil {
		return err
	}
	return e.JSON(200, out)
}

type moderateActionBody struct {
	FlagID    uint64 `json:"flagId"`
	NewStatus string `json:"newStatus"`
}

func (s *Server) handleModerateAction(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleModerateAction")
	defer span.End()

	rev, err := reviewerFromContext(e)
	if err != nil {
		return err
	}

	var body moderateActionBody
	if err := e.Bind(&body); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	if body.FlagID == 0 || body.NewStatus == "" {
		return &echo.HTTPError{Code: 400, Message: "flagId and newStatus are required"}
	}
	span.SetAttributes(attribute.Int64("flagID", int64(body.FlagID)), attribute.String("newStatus", body.NewStatus))

	flag, err := s.engine.Transition(ctx, body.FlagID, flagstore.Status(body.NewStatus), rev.ID, rev.Role)
	if err != nil {
		return mapEngineError(err)
	}
	return e.JSON(200, flag)
}

type flagIDBody struct {
	FlagID uint64 `json:"flagId"`
}

func (s *Server) handleUndoFlag(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleUndoFlag")
	defer span.End()

	rev, err := reviewerFromContext(e)
	if err != nil {
		return err
	}
	var body flagIDBody
	if err := e.Bind(&body); err != nil || body.FlagID == 0 {
		return &echo.HTTPError{Code: 400, Message: "flagId is required"}
	}

	flag, err := s.engine.UndoLastAction(ctx, body.FlagID, rev.ID, rev.Role)
	if err != nil {
		return mapEngineError(err)
	}
	if flag == nil {
		// missing, already pending, or not permitted; not distinguished
		return &echo.HTTPError{Code: 404, Message: "nothing to undo"}
	}
	return e.JSON(200, flag)
}

func (s *Server) handleDeleteFlag(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleDeleteFlag")
	defer span.End()

	rev, err := reviewerFromContext(e)
	if err != nil {
		return err
	}
	var body flagIDBody
	if err := e.Bind(&body); err != nil || body.FlagID == 0 {
		return &echo.HTTPError{Code: 400, Message: "flagId is required"}
	}

	flag, err := s.engine.SoftDelete(ctx, body.FlagID, rev.ID, rev.Role)
	if err != nil {
		return mapEngineError(err)
	}
	return e.JSON(200, flag)
}

func (s *Server) handleUndeleteFlag(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleUndeleteFlag")
	defer span.End()

	rev, err := reviewerFromContext(e)
	if err != nil {
		return err
	}
	var body flagIDBody
	if err := e.Bind(&body); err != nil || body.FlagID == 0 {
		return &echo.HTTPError{Code: 400, Message: "flagId is required"}
	}

	flag, err := s.engine.Undelete(ctx, body.FlagID, rev.ID, rev.Role)
	if err != nil {
		return mapEngineError(err)
	}
	if flag == nil {
		return &echo.HTTPError{Code: 404, Message: "flag is not deleted"}
	}
	return e.JSON(200, flag)
}

func (s *Server) handleSummary(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleSummary")
	defer span.End()

	out, err := s.engine.Summary(ctx)
	if err != nil {
		return err
	}
	return e.JSON(200, out)
}

func (s *Server) handleReviewerStats(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleReviewerStats")
	defer span.End()

	// stats are always for the authenticated reviewer themselves
	rev, err := reviewerFromContext(e)
	if err != nil {
		return err
	}
	out, err := s.engine.ReviewerStats(ctx, rev.ID)
	if err != nil {
		return err
	}
	return e.JSON(200, out)
}

func (s *Server) handleExport(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleExport")
	defer span.End()

	q, err := parseSearchQuery(e)
	if err != nil {
		return err
	}

	format := strings.TrimSpace(e.QueryParam("format"))
	if format == "" {
		format = engine.ExportFormatJSON
	}
	dsar := false
	if d := strings.TrimSpace(e.QueryParam("dsar")); d != "" {
		v, err := strconv.ParseBool(d)
		if err != nil {
			return &echo.HTTPError{Code: 400, Message: fmt.Sprintf("invalid value for 'dsar': %s", err)}
		}
		dsar = v
	}
	span.SetAttributes(attribute.String("format", format), attribute.Bool("dsar", dsar))

	blob, contentType, err := s.engine.Export(ctx, q, format, dsar)
	if err != nil {
		if errors.Is(err, engine.ErrExportLimit) {
			return &echo.HTTPError{Code: 400, Message: err.Error()}
		}
		if strings.Contains(err.Error(), "unsupported export format") {
			return &echo.HTTPError{Code: 400, Message: err.Error()}
		}
		return err
	}
	return e.Blob(200, contentType, blob)
}

type ingestBody struct {
	Text      string `json:"text"`
	LangCode  string `json:"langCode"`
	Source    string `json:"source"`
	CreatedBy string `json:"createdBy"`
}

func (s *Server) handleIngestContent(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleIngestContent")
	defer span.End()

	var body ingestBody
	if err := e.Bind(&body); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	source := flagstore.Source(body.Source)
	if body.CreatedBy == "" || !source.Valid() {
		return &echo.HTTPError{Code: 400, Message: "createdBy and a valid source are required"}
	}
	span.SetAttributes(attribute.String("source", body.Source))

	res := s.engine.CreateFlag(ctx, body.Text, body.LangCode, source, body.CreatedBy)
	if res.Outcome == engine.OutcomeStoreError {
		return res.Err
	}
	// rateLimited and noMatch both read as "not flagged" to the pipeline,
	// but the outcome is reported for observability
	return e.JSON(200, map[string]any{
		"outcome": res.Outcome,
		"flag":    res.Flag,
	})
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrInvalidStatus):
		return &echo.HTTPError{Code: 400, Message: err.Error()}
	case errors.Is(err, engine.ErrUnauthorized):
		return &echo.HTTPError{Code: 403, Message: "not authorized for this flag"}
	case errors.Is(err, engine.ErrNotFound):
		return &echo.HTTPError{Code: 404, Message: "flag not found"}
	default:
		return err
	}
}
