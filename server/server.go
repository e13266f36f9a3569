// Package server wires the store, the AI services and the HTTP API into a
// running process.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/stayscout/stayscout/internal/profile"
	"github.com/stayscout/stayscout/plugin/ai"
	"github.com/stayscout/stayscout/server/internal/observability"
	"github.com/stayscout/stayscout/server/queryengine"
	apiv1 "github.com/stayscout/stayscout/server/router/api/v1"
	"github.com/stayscout/stayscout/server/runner/embedding"
	"github.com/stayscout/stayscout/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer      *echo.Echo
	embeddingRunner *embedding.Runner
	runnerCancel    context.CancelFunc
}

// NewServer creates a server from the profile. AI services are optional:
// without them the catalog endpoints still work, only /search is disabled.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	logger := observability.NewLogger(profile.IsDev())
	slog.SetDefault(logger)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Recover())
	echoServer.Use(observability.RequestLogger(logger))

	server := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: echoServer,
	}

	var engine *queryengine.Engine
	aiConfig := ai.NewConfigFromProfile(profile)
	if aiConfig.Enabled {
		if err := aiConfig.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid AI configuration")
		}
		embeddingService, err := ai.NewEmbeddingService(&aiConfig.Embedding)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create embedding service")
		}
		llmService, err := ai.NewLLMService(&aiConfig.LLM)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create LLM service")
		}

		engineOpts := []queryengine.Option{}
		if aiConfig.Rerank.Enabled {
			weighted := queryengine.NewWeightedStrategy(queryengine.DefaultConfig().Scoring.SemanticWeight)
			engineOpts = append(engineOpts,
				queryengine.WithRankingStrategy(queryengine.NewLLMRerankStrategy(llmService, weighted)))
		}
		engine, err = queryengine.NewEngine(queryengine.DefaultConfig(), store, embeddingService, llmService, engineOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create query engine")
		}

		server.embeddingRunner = embedding.NewRunner(store, embeddingService, aiConfig.Embedding.Model)
	} else {
		slog.Warn("AI services disabled, /search will be unavailable")
	}

	apiService := apiv1.NewAPIV1Service(profile, store, engine)
	apiService.Register(echoServer)

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	return server, nil
}

// Start begins serving and launches background runners. It blocks until the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s.embeddingRunner != nil {
		runnerCtx, cancel := context.WithCancel(ctx)
		s.runnerCancel = cancel
		go s.embeddingRunner.Run(runnerCtx)
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "version", s.Profile.Version)
	return s.echoServer.Start(address)
}

// Shutdown stops the runners and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) {
	if s.runnerCancel != nil {
		s.runnerCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}
