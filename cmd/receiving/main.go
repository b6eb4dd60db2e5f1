package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	proddomain "github.com/wareline/warehouse-receiving/internal/product/domain"
	podomain "github.com/wareline/warehouse-receiving/internal/purchaseorder/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving"
	httpDelivery "github.com/wareline/warehouse-receiving/internal/receiving/delivery/http"
	rcvdomain "github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
	"github.com/wareline/warehouse-receiving/kafka"
	"github.com/wareline/warehouse-receiving/pkg/config"
	"github.com/wareline/warehouse-receiving/pkg/database"
	"github.com/wareline/warehouse-receiving/pkg/logger"
	"github.com/wareline/warehouse-receiving/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting receiving service")

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.ServiceName)
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

	// Connect to database
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewGormConnection(dbConfig, cfg.IsDevelopment())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	err = db.AutoMigrate(
		&whdomain.Location{},
		&whdomain.StorageLevel{},
		&whdomain.Subdivision{},
		&whdomain.StockUnit{},
		&whdomain.RelocationTask{},
		&proddomain.Product{},
		&podomain.PurchaseOrder{},
		&podomain.PurchaseOrderItem{},
		&rcvdomain.ReceivingSession{},
		&rcvdomain.ReceivingItem{},
		&rcvdomain.Discrepancy{},
		&rcvdomain.BarcodeCaptureTask{},
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Separate connection for health checks
	healthDB, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open health check connection")
	}
	defer healthDB.Close()

	// Optional redis cache for the product registry
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Product cache enabled")
	}

	// Optional kafka audit publisher
	var publisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Audit publisher unavailable, continuing without it")
			publisher = nil
		} else {
			defer publisher.Close()
			logger.Logger.Info().Strs("brokers", cfg.KafkaBrokers).Msg("Audit publisher connected")
		}
	}

	// Initialize handler with Wire DI
	handler, err := receiving.InitializeHTTPHandler(db, redisClient, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	// Start HTTP server
	go startHTTPServer(handler, healthDB, cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func startHTTPServer(handler *httpDelivery.ReceivingHandler, healthDB *sql.DB, port string) {
	// Setup router
	router := mux.NewRouter()

	// Register routes
	handler.RegisterRoutes(router)

	// Health check endpoint
	handler.RegisterHealthCheck(router, healthDB)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	traced := otelhttp.NewHandler(c.Handler(router), "receiving-http")
	if err := http.ListenAndServe(":"+port, traced); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}
