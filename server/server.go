// Package server exposes the coach over HTTP and WebSocket with gin.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Desarso/fitcoach"
	"github.com/Desarso/fitcoach/scheduler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Feature gate names. Each feature allows one request in flight at a time.
const (
	GateTip       = "tip"
	GateRecovery  = "recovery"
	GateDiet      = "diet_plan"
	GateWorkout   = "workout_plan"
	GateMealImage = "meal_image"
	GateImageEdit = "image_edit"
	GateVideo     = "video"
	GateAnalysis  = "analysis"
	GatePlaces    = "places"
)

// maxUploadBytes bounds multipart uploads for analysis.
const maxUploadBytes = 64 << 20

type Options struct {
	Coach *fitcoach.Coach
	// Tips serves cached tips when set; otherwise every request generates one.
	Tips         *scheduler.TipRefresher
	AllowOrigins []string
	Logger       *zap.Logger
}

type Server struct {
	coach    *fitcoach.Coach
	tips     *scheduler.TipRefresher
	logger   *zap.Logger
	router   *gin.Engine
	upgrader websocket.Upgrader
}

// New builds the router. Nothing listens until Run.
func New(opts Options) (*Server, error) {
	if opts.Coach == nil {
		return nil, fmt.Errorf("server: coach is required")
	}
	s := &Server{
		coach:  opts.Coach,
		tips:   opts.Tips,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))
	s.registerRoutes(router)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	s.router = router
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", s.health)

	api := router.Group("/api/v1")
	{
		api.GET("/profile", s.getProfile)
		api.PUT("/profile", s.putProfile)
		api.DELETE("/profile", s.deleteProfile)

		api.GET("/tip", s.gated(GateTip, s.tip))
		api.POST("/recovery", s.gated(GateRecovery, s.recovery))
		api.POST("/plans/diet", s.gated(GateDiet, s.dietPlan))
		api.POST("/plans/workout", s.gated(GateWorkout, s.workoutPlan))
		api.POST("/images/meal", s.gated(GateMealImage, s.mealImage))
		api.POST("/images/edit", s.gated(GateImageEdit, s.editImage))
		api.POST("/videos", s.gated(GateVideo, s.video))
		api.POST("/analysis", s.gated(GateAnalysis, s.analysis))
		api.GET("/places", s.gated(GatePlaces, s.places))
		api.GET("/generations", s.generations)

		api.POST("/conversations", s.createConversation)
		api.GET("/conversations/ws", s.conversationSocket)
		api.GET("/conversations/:id", s.getConversation)
		api.POST("/conversations/:id/messages", s.postMessage)
		api.DELETE("/conversations/:id", s.deleteConversation)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.coach.Sessions.CloseAll()
	return nil
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "healthy", "time": time.Now().Format(time.RFC3339)}
	if err := s.coach.Store.Ping(); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["error"] = err.Error()
	}
	body["conversations"] = s.coach.Sessions.Len()
	c.JSON(status, body)
}

// gated runs h only when the named feature has nothing else in flight.
func (s *Server) gated(name string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		gate := s.coach.Gate(name)
		if !gate.TryAcquire() {
			c.JSON(http.StatusConflict, gin.H{"error": name + " is already in progress"})
			return
		}
		defer gate.Release()
		h(c)
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
