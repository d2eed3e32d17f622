package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/keagan/interviewlens/internal/config"
	"github.com/keagan/interviewlens/internal/pipeline"
	"github.com/keagan/interviewlens/internal/report"
	"github.com/keagan/interviewlens/internal/retention"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const shutdownTimeout = 15 * time.Second

// Analyzer runs the interview pipeline on a stored video.
type Analyzer interface {
	Run(ctx context.Context, videoPath, userID string) (*pipeline.Result, error)
}

// Server is the HTTP front of the pipeline.
type Server struct {
	logger    zerolog.Logger
	cfg       config.ServerConfig
	analyzer  Analyzer
	sink      report.Sink
	retention *retention.Scheduler
	guestTTL  time.Duration
	keepAudio bool
	slots     *semaphore.Weighted
	engine    *gin.Engine
}

// New builds the router. sink and sched may be nil.
func New(logger zerolog.Logger, cfg *config.Config, analyzer Analyzer, sink report.Sink, sched *retention.Scheduler) *Server {
	concurrency := int64(cfg.Concurrency)
	if concurrency <= 0 {
		concurrency = 1
	}

	s := &Server{
		logger:    logger.With().Str("component", "server").Logger(),
		cfg:       cfg.Server,
		analyzer:  analyzer,
		sink:      sink,
		retention: sched,
		guestTTL:  cfg.Retention.GuestTTL,
		keepAudio: cfg.Pipeline.KeepAudio,
		slots:     semaphore.NewWeighted(concurrency),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(s.logger))
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))

	r.GET("/healthz", s.health)
	api := r.Group("/api")
	{
		api.POST("/analyze", s.analyze)
	}

	s.engine = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("listening")
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

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
