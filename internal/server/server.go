// =============================================================================
// SWIFT MT Engine - HTTP Server
// =============================================================================
//
// Exposes the engine over HTTP for systems that cannot link it directly.
//
// ROUTES:
//   POST /v1/messages/parse       wire text in, tag/content view out
//   POST /v1/messages/validate    wire text in, violations out
//   POST /v1/messages/serialize   wire text in, normalized wire text out
//   GET  /v1/rules                message types with a rule set
//   GET  /v1/rules/:type          rules run for a message type
//   GET  /health                  liveness
//   GET  /metrics                 Prometheus exposition
//
// Message bodies are the raw wire text (text/plain) or a JSON object
// {"message": "...", "message_type": "103"}.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/metrics"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
)

// Server is the HTTP front end of the engine.
type Server struct {
	cfg     config.ServerConfig
	engine  *validation.Engine
	logger  zerolog.Logger
	router  *gin.Engine
	started time.Time
	version string
}

// New builds a server with its routes registered.
func New(cfg config.ServerConfig, logger zerolog.Logger, version string) *Server {
	metrics.Register()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(RequestMetrics())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		engine:  validation.Default,
		logger:  logger,
		router:  r,
		started: time.Now(),
		version: version,
	}
	s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "swiftmt",
			"version": s.version,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/v1")
	v1.POST("/messages/parse", s.handleParse)
	v1.POST("/messages/validate", s.handleValidate)
	v1.POST("/messages/serialize", s.handleSerialize)
	v1.GET("/rules", s.handleRuleTypes)
	v1.GET("/rules/:type", s.handleRules)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
