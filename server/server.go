package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recordformatter/internal/container"
	"recordformatter/server/handlers"
	"recordformatter/server/middleware"
)

// Server HTTP-сервис форматирования записей
type Server struct {
	container  *container.Container
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// New создает сервер и регистрирует маршруты
func New(c *container.Container) *Server {
	s := &Server{
		container: c,
		logger:    c.Logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	// Режим можно переопределить через GIN_MODE
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(s.logger, s.container.Metrics))
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.Gzip())

	var health *handlers.HealthHandler
	if s.container.Resolver != nil {
		health = handlers.NewHealthHandler(s.container.Resolver)
	} else {
		health = handlers.NewHealthHandler(nil)
	}
	router.GET("/health", health.Health)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.container.Registry, promhttp.HandlerOpts{})))

	recordsHandler := handlers.NewRecordsHandler(s.container.Config, s.container.Plain, s.container.Enriched, s.logger)
	api := router.Group("/api/v1")
	{
		api.POST("/records/normalize", recordsHandler.Normalize)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{
			Error:     "Route not found",
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: middleware.GetRequestIDFromGin(c),
		})
	})

	return router
}

// ServeHTTP реализует http.Handler для тестов
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start запускает HTTP сервер и блокируется до Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.container.Config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		// Пакет с обогащением может идти долго
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server on %s: %w", addr, err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер и освобождает ресурсы контейнера
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.container.Close()

	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Initiating graceful shutdown")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.logger.Info("Graceful shutdown completed")
	return nil
}
