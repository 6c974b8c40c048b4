package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/immipath/modflag/moderation/countstore"
	"github.com/immipath/modflag/moderation/engine"
	"github.com/immipath/modflag/moderation/flagstore"
	"github.com/immipath/modflag/moderation/rules"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/gorm"
)

type Server struct {
	logger      *slog.Logger
	engine      *engine.Engine
	jwtSecret   []byte
	ingestToken string
}

type Config struct {
	Logger        *slog.Logger
	RedisURL      string
	RulesFileJSON string
	JWTSecret     string
	IngestToken   string
	ExportMaxRows int
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	ruleset := rules.DefaultRules()
	if config.RulesFileJSON != "" {
		if err := ruleset.LoadFromFileJSON(config.RulesFileJSON); err != nil {
			return nil, fmt.Errorf("loading rule config: %w", err)
		}
		logger.Info("loaded rule config from JSON", "path", config.RulesFileJSON, "rules", len(ruleset.Rules))
	}

	var counters countstore.CountStore
	if config.RedisURL != "" {
		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %w", err)
		}
		counters = cnt
	} else {
		logger.Info("redis not configured, using in-process rate-limit counters")
		counters = countstore.NewMemCountStore()
	}

	flags, err := flagstore.NewGormFlagStore(db)
	if err != nil {
		return nil, fmt.Errorf("initializing flag store: %w", err)
	}

	engCfg := engine.DefaultEngineConfig()
	if config.ExportMaxRows > 0 {
		engCfg.ExportMaxRows = config.ExportMaxRows
	}

	eng := &engine.Engine{
		Logger:   logger,
		Rules:    ruleset,
		Counters: counters,
		Flags:    flags,
		Config:   engCfg,
	}

	return &Server{
		logger:      logger,
		engine:      eng,
		jwtSecret:   []byte(config.JWTSecret),
		ingestToken: config.IngestToken,
	}, nil
}

func (s *Server) RunAPI(bind string) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(slogecho.New(s.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(MetricsMiddleware)

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		switch err := err.(type) {
		case *echo.HTTPError:
			if err2 := ctx.JSON(err.Code, map[string]any{
				"error": err.Message,
			}); err2 != nil {
				s.logger.Error("failed to write http error", "err", err2)
			}
		default:
			// never leak store internals to clients
			s.logger.Warn("handler error", "path", ctx.Path(), "err", err)
			if err2 := ctx.JSON(http.StatusInternalServerError, map[string]any{
				"error": "internal server error",
			}); err2 != nil {
				s.logger.Error("failed to write http error", "err", err2)
			}
		}
	}

	e.GET("/_health", s.handleHealthCheck)

	reviewer := e.Group("", s.checkReviewerAuth)
	reviewer.GET("/flags", s.handleSearchFlags)
	reviewer.POST("/moderate-action", s.handleModerateAction)
	reviewer.POST("/undo-flag", s.handleUndoFlag)
	reviewer.POST("/delete-flag", s.handleDeleteFlag)
	reviewer.POST("/undelete-flag", s.handleUndeleteFlag)
	reviewer.GET("/summary", s.handleSummary)
	reviewer.GET("/reviewer-stats", s.handleReviewerStats)
	reviewer.GET("/export", s.handleExport)

	// internal seam for the chat/UGC ingestion pipeline
	ingest := e.Group("/ingest", s.checkIngestAuth)
	ingest.POST("", s.handleIngestContent)

	s.logger.Info("starting moderation API", "bind", bind)
	return e.Start(bind)
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (s *Server) handleHealthCheck(e echo.Context) error {
	return e.JSON(200, map[string]any{"status": "ok"})
}
