package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"polling-svc/src/clients"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/dependency"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

const shutdownTimeout = 15 * time.Second

type Server struct {
	cfg *config.Configuration
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

// Start connects the backing services, serves HTTP and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	cfg := s.cfg
	gin.SetMode(cfg.Server.Mode)

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		return err
	}

	redisClient, err := clients.NewRedisClient(&cfg.Redis)
	if err != nil {
		closeMongo(mongodb)
		return err
	}

	rabbitMQ, err := clients.NewRabbitMQ(&cfg.Queue)
	if err != nil {
		closeMongo(mongodb)
		redisClient.Close()
		return err
	}

	defer func() {
		rabbitMQ.Close()
		redisClient.Close()
		closeMongo(mongodb)
	}()

	if err := rabbitMQ.SetupQueue(); err != nil {
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	deps := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), time.Duration(cfg.Database.Timeout)*time.Second)
	err = deps.Installer.Run(setupCtx)
	cancelSetup()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	SetupRoutes(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := deps.VoteConsumer.Run(ctx); err != nil {
			log.WithError(err).Error("Vote consumer failed")
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Server listening on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			<-consumerDone
			return err
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	deps.ResultsHub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	stop()
	<-consumerDone

	log.Info("Server stopped")
	return nil
}

func closeMongo(m *clients.MongoDB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.Close(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"route_name": c.GetString("route_name"),
		}).Debug("Request handled")
	}
}
