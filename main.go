package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatali-fataliyev/budget_planner/api"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/config"
	"github.com/fatali-fataliyev/budget_planner/internal/events"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
	"github.com/fatali-fataliyev/budget_planner/internal/storage"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func main() {
	if err := run(); err != nil {
		logging.Logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return err
	}

	if err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		AppEnv: cfg.AppEnv,
		Dir:    cfg.LogDir,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logging.Logger.Info("application starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	logging.Logger.Infof("using %s storage", store.GetStorageType())

	publisher, err := newPublisher(cfg.AMQP)
	if err != nil {
		return err
	}
	defer publisher.Close()

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		logging.Logger.Warn("JWT_SECRET not set, tokens will not survive a restart")
	}

	planner := api.NewApi(
		auth.NewAuthenticator(store),
		tokens,
		budget.NewBudgetStore(store),
		ledger.NewLedger(store, publisher),
	)

	mux := http.NewServeMux()
	planner.Register(mux)

	srv := &http.Server{
		Addr:           ":" + cfg.AppPort,
		Handler:        corsConf.Handler(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Logger.Infof("Starting server on port: %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logging.Logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logging.Logger.Info("Server stopped gracefully")
	return nil
}

func newPublisher(cfg config.AMQPConfig) (events.Publisher, error) {
	if cfg.URL == "" {
		logging.Logger.Info("AMQP_URL not set, ledger events are not published")
		return events.NopPublisher{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange, cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}
	return p, nil
}
