package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/chat"
	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine *gin.Engine
	cfg    config.ServerConfig
	logger logger.Logger
}

// NewServer builds the gin engine. chat may be nil, in which case /api/chat
// answers 503.
func NewServer(cfg config.ServerConfig, p pipeline.Pipeline, store artifact.Store, c chat.Chat, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))
	engine.Use(CORS(cfg.AllowedOrigins))

	api := NewAPI(p, store, c, log)
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg, logger: log}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "API listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
