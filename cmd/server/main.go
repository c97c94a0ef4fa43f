package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-queue-service/internal/domain/repository"
	"flight-queue-service/internal/infrastructure/config"
	"flight-queue-service/internal/infrastructure/persistence"
	"flight-queue-service/internal/infrastructure/seed"
	"flight-queue-service/internal/interface/api"
	storeRepo "flight-queue-service/internal/interface/repository"
	"flight-queue-service/internal/usecase"
	"flight-queue-service/pkg/logger"
	"flight-queue-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
)

type stores struct {
	flights  repository.FlightRepository
	history  repository.FlightHistoryRepository
	airlines repository.AirlineRepository
	airports repository.AirportRepository
	mongo    *mongo.Client
}

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "env files to load before reading the environment (default .env)")
	seedFile := pflag.String("seed", "", "YAML file with airline and airport reference data (overrides REFERENCE_SEED_FILE)")
	pflag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*envFiles...)
	if err != nil {
		logger.NewLogger("info", false).Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel, cfg.Debug)
	defer log.Sync()
	log.Info("Starting Flight Queue Service", "version", cfg.AppVersion, "store", cfg.StoreDriver)
	if *seedFile != "" {
		cfg.ReferenceSeedFile = *seedFile
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open stores", "error", err)
	}

	m := metrics.NewMetrics("flight_queue", prometheus.DefaultRegisterer)
	validator := usecase.NewFlightValidator(cfg.ScheduleGrace, nil)
	manager := usecase.NewFlightManager(s.flights, s.history, validator, m, log, cfg.MaxFlightsPerPage)

	if err := manager.Load(ctx); err != nil {
		log.Fatal("Failed to load flight queue", "error", err)
	}

	handler := api.NewHandler(manager, s.airlines, s.airports, prometheus.DefaultGatherer, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if s.mongo != nil {
		if err := s.mongo.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Flight Queue Service stopped")
}

// openStores wires the repositories for the configured store driver. The
// memory driver needs no external services.
func openStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*stores, error) {
	var ref *seed.Reference
	if cfg.ReferenceSeedFile != "" {
		var err error
		if ref, err = seed.ReadReferenceFile(cfg.ReferenceSeedFile); err != nil {
			return nil, err
		}
		log.Info("Read reference seed", "file", cfg.ReferenceSeedFile, "airlines", len(ref.Airlines), "airports", len(ref.Airports))
	}

	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("Using in-memory stores, data is lost on restart")
		reference := storeRepo.NewMemoryReferenceRepository()
		if ref != nil {
			reference.Seed(ref.AirlineEntities(), ref.AirportEntities())
		}
		return &stores{
			flights:  storeRepo.NewMemoryFlightRepository(),
			history:  storeRepo.NewMemoryFlightHistoryRepository(),
			airlines: reference,
			airports: reference,
		}, nil
	}

	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgres(cfg.PostgresURI, cfg.Debug)
	if err != nil {
		return nil, err
	}
	if err := storeRepo.Migrate(gormDB); err != nil {
		return nil, err
	}
	if ref != nil {
		if err := storeRepo.SeedReference(ctx, gormDB, ref.AirlineEntities(), ref.AirportEntities()); err != nil {
			return nil, err
		}
	}

	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		return nil, err
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	return &stores{
		flights:  storeRepo.NewGormFlightRepository(gormDB),
		history:  storeRepo.NewMongoFlightHistoryRepository(db),
		airlines: storeRepo.NewGormAirlineRepository(gormDB),
		airports: storeRepo.NewGormAirportRepository(gormDB),
		mongo:    mongoClient,
	}, nil
}
