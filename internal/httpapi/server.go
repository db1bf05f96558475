package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/db"
)

const (
	basePath        = "/api/v1"
	shutdownTimeout = 10 * time.Second
)

// Server exposes the allocation services over HTTP
type Server struct {
	cfg    *config.Config
	store  db.Database
	logger *zap.Logger
	auth   *Authenticator
	router *gin.Engine
}

// NewServer builds the router. A JWT secret is required; the admin routes are only
// mounted when an admin token is configured.
func NewServer(cfg *config.Config, store db.Database, logger *zap.Logger) (*Server, error) {
	if cfg.Server.JWTSecret == "" {
		return nil, errors.New("server.jwtSecret is required to serve")
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger.With(zap.String("component", "http")),
		auth:   NewAuthenticator(cfg.Server.JWTSecret),
		router: gin.New(),
	}

	s.router.Use(requestid.New())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(gin.Recovery())
	s.mountHandlers()

	return s, nil
}

func (s *Server) mountHandlers() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pools := s.router.Group(basePath+"/pools/:pool", s.auth.RequirePerson())
	{
		pools.GET("/activities", s.handleListActivities)
		pools.GET("/applications", s.handleListAppliedDays)
		pools.POST("/applications", s.handleApply)
		pools.GET("/application", s.handleGetApplication)
		pools.DELETE("/application", s.handleCancel)
	}

	group := s.router.Group(basePath+"/group", s.auth.RequirePerson())
	{
		group.GET("/applications", s.handleGroupApplications)
	}

	if s.cfg.Server.AdminToken == "" {
		s.logger.Info("Admin token not configured - batch triggers disabled")
		return
	}
	admin := s.router.Group(basePath+"/admin", RequireAdmin(s.cfg.Server.AdminToken))
	{
		admin.POST("/fill-afternoon", s.handleFillAfternoon)
		admin.POST("/backfill-trails", s.handleBackfillTrails)
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.Get(c)),
		}
		if personID := c.GetString(personIDKey); personID != "" {
			fields = append(fields, zap.String("person_id", personID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
			return
		}
		logger.Debug("Request handled", fields...)
	}
}
