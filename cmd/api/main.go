package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/config"
	"github.com/Dan9191/hallbridge/internal/handler"
	"github.com/Dan9191/hallbridge/internal/middleware"
	"github.com/Dan9191/hallbridge/internal/repository"
	"github.com/Dan9191/hallbridge/internal/repository/memstore"
	"github.com/Dan9191/hallbridge/internal/scheduler"
	"github.com/Dan9191/hallbridge/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize storage
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to set up storage: %v", err)
	}
	defer closeStore()

	// Initialize layers
	svc := service.NewService(store, logger, cfg)
	if err := svc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatalf("Failed to bootstrap admin: %v", err)
	}
	h := handler.NewHandler(svc, logger)
	r := handler.NewRouter(h, middleware.AuthMiddleware(cfg, svc), logger)

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched, err = scheduler.New(svc, logger, cfg.BillingSchedule, cfg.LateFeeSchedule)
		if err != nil {
			logger.Fatalf("Failed to set up scheduler: %v", err)
		}
		sched.Start()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s (storage: %s)", addr, cfg.Storage)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	case sig := <-shutdown:
		logger.Infof("%v: start shutdown", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if sched != nil {
			sched.Stop(ctx)
		}
		if err := server.Shutdown(ctx); err != nil {
			logger.Errorf("Could not stop server gracefully: %v", err)
			server.Close()
		}
	}
	logger.Info("Server stopped")
}

// openStore returns the configured storage backend and a function releasing it
func openStore(cfg *config.Config, logger *logrus.Logger) (service.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := repository.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() {
		if err := db.Close(); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}, nil
}
