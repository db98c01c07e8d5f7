// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"walk-booking/cmd"
	"walk-booking/internal/consumer"
	"walk-booking/internal/data/memstore"
	"walk-booking/internal/data/repository"
	"walk-booking/internal/ledger"
	"walk-booking/internal/schedule"
	"walk-booking/internal/wire"
	"walk-booking/pkg/auth"
	"walk-booking/pkg/database"
	"walk-booking/pkg/mq"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const consumerPrefetch = 16

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.Database.Driver),
		zap.String("balance_model", config.Booking.BalanceModel),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Application stopped")
}

func run(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	loc, err := config.Booking.Location()
	if err != nil {
		return err
	}
	clock, err := schedule.NewClock(schedule.Config{
		WindowStartHour: config.Booking.WindowStartHour,
		WindowEndHour:   config.Booking.WindowEndHour,
		IntervalMinutes: config.Booking.SlotIntervalMinutes,
		Location:        loc,
	})
	if err != nil {
		return fmt.Errorf("slot schedule: %w", err)
	}

	policy, err := ledger.New(ledger.Model(config.Booking.BalanceModel))
	if err != nil {
		return err
	}

	repos, closeStore, err := openStorage(ctx, config.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	verifier := auth.NewVerifier(config.Auth.JWTSecret, config.Auth.JWTIssuer)

	// Wire all dependencies
	app := wire.Wiring(repos, config, clock, policy, verifier, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return cmd.APIServer(ctx, app.Router, config.App.Port, logger)
	})

	if config.Broker.URL != "" {
		source, err := mq.NewConsumer(
			config.Broker.URL,
			config.Broker.Exchange,
			config.Broker.Queue,
			[]string{config.Broker.RoutingKey},
			consumerPrefetch,
		)
		if err != nil {
			return fmt.Errorf("payment consumer: %w", err)
		}
		defer source.Close()

		payments := consumer.NewPaymentConsumer(source, app.Service.Payment, config.Broker.RoutingKey, logger)
		g.Go(func() error {
			return payments.Run(ctx)
		})
	} else {
		logger.Warn("RABBIT_URL not set, payment events will not be consumed")
	}

	return g.Wait()
}

// openStorage returns the repository set for the configured driver and a
// function releasing it.
func openStorage(ctx context.Context, config utils.DatabaseConfig, logger *zap.Logger) (*repository.Repository, func(), error) {
	switch config.Driver {
	case "memory":
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memstore.New(config.TxMaxRetries, logger).Repository(), func() {}, nil

	case "postgres":
		db, err := database.InitDB(config)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("Database connected successfully")
		return repository.NewRepository(db, config.TxMaxRetries, logger), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", config.Driver)
	}
}
