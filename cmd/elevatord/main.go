package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/plundell/stabelo-elevator/config"
	"github.com/plundell/stabelo-elevator/internal/api"
	"github.com/plundell/stabelo-elevator/internal/bank"
	"github.com/plundell/stabelo-elevator/internal/db"
	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/health"
	"github.com/plundell/stabelo-elevator/internal/journal"
	"github.com/plundell/stabelo-elevator/internal/notification"
	"github.com/plundell/stabelo-elevator/internal/strategy"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "elevatord ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	strat, err := strategy.ForName(cfg.Controller.Strategy)
	if err != nil {
		logger.Fatalf("invalid strategy: %v", err)
	}

	// Build the bank
	b, err := bank.New(bank.Config{
		TravelPerFloor:  cfg.Controller.TravelTimePerFloor,
		DoorOpen:        cfg.Controller.DoorOpenTime,
		EstimationLimit: cfg.Controller.EstimationLimit,
		UseFreeFirst:    cfg.Controller.FreeFirst(),
		Floors: floor.Range{
			Min: floor.Floor(cfg.Controller.MinFloor),
			Max: floor.Floor(cfg.Controller.MaxFloor),
		},
		Elevators:    cfg.Controller.NrOfElevators,
		InitialFloor: floor.Floor(cfg.Controller.InitialFloor),
		Debug:        cfg.Controller.Debug(),
	}, strat, logger)
	if err != nil {
		logger.Fatalf("failed to build elevator bank: %v", err)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional journal: database, recorder, arrival notifications
	var store journal.Store
	var recorder *journal.Recorder
	if cfg.Journal.Enabled {
		gormDB, err := db.Init(&cfg.Journal)
		if err != nil {
			logger.Fatalf("failed to initialize journal database: %v", err)
		}
		store = journal.NewGormStore(gormDB)
		recorder = journal.NewRecorder(store, logger)
		recorder.Start(ctx)
		defer recorder.Attach(b)()
		logger.Println("journal initialized")
	}

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		if store != nil {
			pool := notification.NewWorkerPool(cfg.WorkerPool.Size, store, webpushOptions, logger)
			pool.Start(ctx)
			defer pool.Attach(b)()
			logger.Println("arrival notifications enabled")
		}
	}

	// Start the elevators
	if err := b.Start(); err != nil {
		logger.Fatalf("failed to start elevators: %v", err)
	}
	logger.Printf("elevator bank running: %v", b.ListElevators())

	// Health monitor
	if cfg.Health.Enabled {
		monitor := health.NewMonitor(b, cfg.Health.Interval, cfg.Health.ProbeTimeout, logger)
		go monitor.Run(ctx)
	}

	// HTTP server
	handler := api.NewHandler(b, store, recorder, webpushOptions, logger)
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	b.Shutdown()
	logger.Println("Server gracefully stopped")
}
