package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	exchttp "github.com/pickerpack/fulfillment/internal/exception/delivery/http"
	excdomain "github.com/pickerpack/fulfillment/internal/exception/domain"
	excrepo "github.com/pickerpack/fulfillment/internal/exception/repository"
	exccommand "github.com/pickerpack/fulfillment/internal/exception/usecase/command"
	excquery "github.com/pickerpack/fulfillment/internal/exception/usecase/query"
	"github.com/pickerpack/fulfillment/internal/fulfillment/assign"
	fhttp "github.com/pickerpack/fulfillment/internal/fulfillment/delivery/http"
	fdomain "github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	frepo "github.com/pickerpack/fulfillment/internal/fulfillment/repository"
	fcommand "github.com/pickerpack/fulfillment/internal/fulfillment/usecase/command"
	fquery "github.com/pickerpack/fulfillment/internal/fulfillment/usecase/query"
	invhttp "github.com/pickerpack/fulfillment/internal/inventory/delivery/http"
	invdomain "github.com/pickerpack/fulfillment/internal/inventory/domain"
	invrepo "github.com/pickerpack/fulfillment/internal/inventory/repository"
	invcommand "github.com/pickerpack/fulfillment/internal/inventory/usecase/command"
	invquery "github.com/pickerpack/fulfillment/internal/inventory/usecase/query"
	shifthttp "github.com/pickerpack/fulfillment/internal/shift/delivery/http"
	shiftdomain "github.com/pickerpack/fulfillment/internal/shift/domain"
	shiftrepo "github.com/pickerpack/fulfillment/internal/shift/repository"
	shiftcommand "github.com/pickerpack/fulfillment/internal/shift/usecase/command"
	shiftquery "github.com/pickerpack/fulfillment/internal/shift/usecase/query"
	userhttp "github.com/pickerpack/fulfillment/internal/user/delivery/http"
	userdomain "github.com/pickerpack/fulfillment/internal/user/domain"
	userrepo "github.com/pickerpack/fulfillment/internal/user/repository"
	"github.com/pickerpack/fulfillment/kafka"
	"github.com/pickerpack/fulfillment/pkg/database"
	"github.com/pickerpack/fulfillment/pkg/logger"
	"github.com/pickerpack/fulfillment/pkg/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	serviceName := getEnv("OTEL_SERVICE_NAME", "pickerpack-fulfillment")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting fulfillment service")

	// Tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Database
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "fulfillmentdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	// Raw connection used only by the health check.
	healthDB, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer healthDB.Close()

	if err := db.AutoMigrate(
		&userdomain.User{},
		&invdomain.SKU{},
		&invdomain.Bin{},
		&invdomain.LockTag{},
		&fdomain.Order{},
		&fdomain.OrderItem{},
		&fdomain.Task{},
		&fdomain.TaskItem{},
		&fdomain.TaskItemLockTag{},
		&shiftdomain.Shift{},
		&shiftdomain.GeofenceSetting{},
		&excdomain.Exception{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	// Redis, used only as a geofence settings cache. Optional.
	var redisClient *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
		})
		defer redisClient.Close()
		logger.Logger.Info().Str("addr", addr).Msg("Redis cache enabled")
	}

	// Kafka event publishing. Optional.
	var publisher fcommand.EventPublisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		p, err := kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to connect to Kafka, events disabled")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	// Repositories
	userRepo := userrepo.NewGormUserRepository(db)
	catalogRepo := invrepo.NewGormCatalogRepository(db)
	ledger := invrepo.NewGormLedgerWithTracing(db)
	orderRepo := frepo.NewGormOrderRepository(db)
	taskRepo := frepo.NewGormTaskRepository(db)
	shiftRepo := shiftrepo.NewGormShiftRepository(db)
	exceptionRepo := excrepo.NewGormExceptionRepository(db)
	geofenceRepo := shiftrepo.NewCachedGeofenceRepository(
		shiftrepo.NewGormGeofenceRepository(db), redisClient)

	// Handlers
	userHandler := userhttp.NewUserHandler(userRepo)

	inventoryHandler := invhttp.NewInventoryHandler(
		invcommand.NewCreateSKUHandler(catalogRepo),
		invcommand.NewCreateBinHandler(catalogRepo),
		invcommand.NewPutawayHandler(catalogRepo, ledger),
		invquery.NewStockLevelHandler(catalogRepo, ledger),
		invquery.NewListTagsHandler(ledger),
		catalogRepo,
	)

	guard := shiftquery.NewShiftGuard(shiftRepo)
	shiftHandler := shifthttp.NewShiftHandler(
		shiftcommand.NewStartShiftHandler(shiftRepo, geofenceRepo),
		shiftcommand.NewEndShiftHandler(shiftRepo, taskRepo),
		shiftcommand.NewUpsertGeofenceHandler(geofenceRepo),
		shiftcommand.NewDeleteGeofenceHandler(geofenceRepo),
		shiftquery.NewActiveShiftHandler(shiftRepo),
		geofenceRepo,
	)

	exceptionHandler := exchttp.NewExceptionHandler(
		exccommand.NewReportExceptionHandler(exceptionRepo),
		exccommand.NewReviewExceptionHandler(exceptionRepo),
		excquery.NewListExceptionsHandler(exceptionRepo),
	)

	rotation := assign.NewRoundRobin()
	completeTask := fcommand.NewCompleteTaskHandler(db, taskRepo, orderRepo, publisher)
	fulfillmentHandler := fhttp.NewFulfillmentHandler(
		fcommand.NewCreateOrderHandler(db, orderRepo, taskRepo, ledger, rotation),
		fcommand.NewProcessScanHandler(db, taskRepo, ledger),
		completeTask,
		fquery.NewListTasksHandler(taskRepo),
		fquery.NewGetTaskHandler(taskRepo),
		fquery.NewPickingQueueHandler(taskRepo),
		fquery.NewListOrdersHandler(orderRepo),
		fquery.NewGetOrderHandler(orderRepo),
		fquery.NewPackingQueueHandler(orderRepo),
		guard,
		userRepo,
	)

	// With a consumer group configured, this instance also follows
	// picks made by other instances: completion events replay the
	// order cascade, which no-ops on orders already Picked here.
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		if groupID := getEnv("KAFKA_CONSUMER_GROUP", ""); groupID != "" {
			consumer, err := kafka.NewConsumer(strings.Split(brokers, ","), groupID)
			if err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
			} else {
				consumer.OnTaskCompleted(func(ctx context.Context, event kafka.TaskCompletedEvent) error {
					_, err := completeTask.OnTaskCompleted(&fdomain.Task{
						ID:   event.TaskID,
						Type: event.TaskType,
					})
					return err
				})
				consumer.OnOrderPicked(func(ctx context.Context, event kafka.OrderPickedEvent) error {
					logger.Info(ctx).
						Str("order_number", event.OrderNumber).
						Uint("worker_id", event.WorkerID).
						Int("total_items", event.TotalItems).
						Msg("Order ready for packing")
					return nil
				})
				consumerCtx, cancelConsumer := context.WithCancel(context.Background())
				defer cancelConsumer()
				if err := consumer.Start(consumerCtx); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
				}
				defer consumer.Close()
			}
		}
	}

	// Router
	router := mux.NewRouter()
	userHandler.RegisterRoutes(router)
	userHandler.RegisterHealthCheck(router, healthDB)
	inventoryHandler.RegisterRoutes(router)
	shiftHandler.RegisterRoutes(router)
	fulfillmentHandler.RegisterRoutes(router)
	exceptionHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpPort := getEnv("HTTP_PORT", "8080")
	server := &http.Server{
		Addr:    ":" + httpPort,
		Handler: otelhttp.NewHandler(c.Handler(router), "http.server"),
	}

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
