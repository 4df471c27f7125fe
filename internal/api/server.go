// Package api exposes SpendScore scoring and stored reports over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/spendscore/internal/certs"
	"github.com/Veraticus/spendscore/internal/importer"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/gin-gonic/gin"
)

// Config holds HTTP server settings.
type Config struct {
	// Certificates switches the server to HTTPS when set.
	Certificates   certs.Manager
	Mode           string // debug, release or test
	MaxUploadBytes int64
}

// Server wires the HTTP routes to the reporting service.
type Server struct {
	reports   *reporting.Service
	loader    *importer.Loader
	certs     certs.Manager
	router    *gin.Engine
	logger    *slog.Logger
	maxUpload int64
}

// NewServer creates the HTTP API.
func NewServer(reports *reporting.Service, loader *importer.Loader, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default().With("component", "api")
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = importer.DefaultMaxBytes
	}

	s := &Server{
		reports:   reports,
		loader:    loader,
		certs:     cfg.Certificates,
		logger:    logger,
		maxUpload: cfg.MaxUploadBytes,
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	s.routes(router)
	s.router = router
	return s
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", s.health)
	api.POST("/spend-score", s.score)
	api.POST("/upload", s.upload)
	api.GET("/uploads/formats", s.formats)
	api.GET("/analytics/summary", s.summary)

	reports := api.Group("/reports")
	reports.GET("", s.listReports)
	reports.GET("/stats", s.reportStats)
	reports.GET("/:id", s.getReport)
	reports.POST("/:id/regenerate", s.regenerateReport)
	reports.GET("/:id/trends", s.reportTrends)
	reports.GET("/:id/categories", s.reportCategories)
	reports.GET("/:id/duplicates", s.reportDuplicates)
	reports.DELETE("/:id", s.deleteReport)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.certs != nil {
		cert, err := s.certs.GetOrCreateCertificate()
		if err != nil {
			return fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if srv.TLSConfig != nil {
			s.logger.Info("HTTPS server listening", "addr", addr)
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}
