// Package server exposes the dashboard API over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg       *store.Config
	portfolio interfaces.Portfolio
	router    *gin.Engine
	http      *http.Server
}

func New(cfg *store.Config, p interfaces.Portfolio) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{cfg: cfg, portfolio: p}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		// Leave room for the broker timeout plus serialization.
		WriteTimeout: cfg.Timeout() + 10*time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), observe(), s.cors())

	api := r.Group("/api")
	api.GET("/health", s.health)

	data := api.Group("", noStore())
	data.GET("/algorithms", s.listAlgorithms)
	data.GET("/algorithms/:name", s.getAlgorithm)
	data.GET("/algorithms/:name/trades", s.getTrades)
	data.GET("/algorithms/:name/stats", s.getStats)
	data.GET("/algorithms/:name/performance", s.getPerformance)
	data.GET("/alpaca/metrics", s.getMetrics)
	data.GET("/live-equity", s.getLiveEquity)
	return r
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	logger.Info(ctx, "HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
