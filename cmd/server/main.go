package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "rentalhub-backend/internal/api/grpc"
	"rentalhub-backend/internal/api/grpc/interceptor"
	httpapi "rentalhub-backend/internal/api/http"
	"rentalhub-backend/internal/cache"
	"rentalhub-backend/internal/config"
	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/lock"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/queue"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/repository/memory"
	"rentalhub-backend/internal/repository/postgres"
	"rentalhub-backend/internal/security"
	"rentalhub-backend/internal/service"

	_ "github.com/lib/pq"
)

type repositories struct {
	users         repository.UserRepository
	items         repository.ItemRepository
	rentals       repository.RentalRepository
	threads       repository.ThreadRepository
	notifications repository.NotificationRepository
	reviews       repository.ReviewRepository
	shutdown      func()
}

// openStorage is swapped out in tests to observe shutdown.
var openStorage = openRepositories

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentalHub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// run wires the server and blocks until ctx is done or serving fails. Every
// resource opened here is released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	repos, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer repos.shutdown()

	// Item lookups go through the cache; approvals read through it.
	items := repos.items
	if cfg.Cache.Enabled {
		itemCache := cache.NewItemCache(repos.items, cfg.Cache.MaxItems, cfg.Cache.TTL())
		defer itemCache.Stop()
		items = itemCache
		logger.Info("Item cache enabled", "max_items", cfg.Cache.MaxItems, "ttl", cfg.Cache.TTL())
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize item lock: %w", err)
	}
	defer closeLocker()

	// Notifications
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid API key not set, emails will only be logged")
		emailSvc = service.NewLogEmailService()
	}
	dispatcher := service.NewDispatcher(repos.users, items, repos.notifications, emailSvc)

	var publisher service.EventPublisher
	if cfg.Queue.Enabled {
		amqpPublisher := queue.NewPublisher(cfg.Queue.URL)
		defer amqpPublisher.Close()
		publisher = amqpPublisher

		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Prefetch, dispatcher)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Rental event consumer stopped", "error", err)
			}
		}()
		logger.Info("Rental events routed through RabbitMQ", "queue", queue.RentalEventsQueue)
	} else {
		publisher = service.NewDirectPublisher(dispatcher)
		logger.Info("Rental events dispatched in-process")
	}

	// Initialize Services
	rentalSvc := service.NewRentalService(
		repos.rentals,
		repos.threads,
		items,
		service.WithLocker(locker),
		service.WithLockTimeout(cfg.Lock.AcquireTimeout()),
		service.WithPublisher(publisher),
	)
	noteSvc := service.NewNotificationService(repos.notifications)
	reviewSvc := service.NewReviewService(repos.reviews, repos.rentals)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GetServerAddress(), err)
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.LoggingUnary(), authInterceptor.Unary()),
	)

	// Register services
	api.RegisterRentalServiceServer(s, api.NewRentalHandler(rentalSvc))
	api.RegisterNotificationServiceServer(s, api.NewNotificationHandler(noteSvc))
	api.RegisterReviewServiceServer(s, api.NewReviewHandler(reviewSvc))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(s, healthSrv)
	healthSrv.SetServingStatus(api.RentalServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(api.NotificationServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(api.ReviewServiceName, healthpb.HealthCheckResponse_SERVING)

	var httpServer *http.Server
	if addr := cfg.GetHTTPAddress(); addr != "" {
		httpServer = &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(rentalSvc, repos.users, tokenManager),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "address", addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		logger.Info("Shutting down...")
		healthSrv.Shutdown()
		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown failed", "error", err)
			}
		}
		s.GracefulStop()
	}()

	logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		s.Stop()
		return fmt.Errorf("serve gRPC: %w", err)
	}
	<-stopped
	return nil
}

func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		seedDemoData(store)
		return &repositories{
			users:         store.Users(),
			items:         store.Items(),
			rentals:       store.Rentals(),
			threads:       store.Threads(),
			notifications: store.Notifications(),
			reviews:       store.Reviews(),
			shutdown:      func() {},
		}, nil
	}

	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	return &repositories{
		users:         store.UserRepository,
		items:         store.ItemRepository,
		rentals:       store.RentalRepository,
		threads:       store.ThreadRepository,
		notifications: store.NotificationRepository,
		reviews:       store.Reviews,
		shutdown:      func() { _ = db.Close() },
	}, nil
}

func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.Lock.Driver != "redis" {
		logger.Info("Using in-process item lock")
		return lock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("Using Redis item lock", "addr", cfg.Redis.Addr, "ttl", cfg.Lock.TTL())
	return lock.NewRedis(client, cfg.Lock.TTL(), cfg.Lock.RetryDelay()), func() { _ = client.Close() }, nil
}

// seedDemoData gives a memory-backed server something to rent.
func seedDemoData(store *memory.Store) {
	store.PutUser(domain.User{ID: 1, Name: "Demo Owner", Email: "owner@example.com"})
	store.PutUser(domain.User{ID: 2, Name: "Demo Renter", Email: "renter@example.com"})
	store.PutItem(domain.Item{
		ID:             1,
		OwnerID:        1,
		Title:          "Cordless drill",
		DailyRateCents: 1500,
		Deposit:        domain.DepositPolicy{Kind: domain.DepositKindMultiplier, Multiplier: 3},
	})
}
