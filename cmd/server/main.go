package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-order-service/config"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/fekuna/omnipos-order-service/internal/payment/analytics"
	"github.com/fekuna/omnipos-order-service/internal/payment/gateway"
	"github.com/fekuna/omnipos-order-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-order-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-order-service/internal/transaction/realtime"
	"github.com/fekuna/omnipos-order-service/internal/validation"

	entH "github.com/fekuna/omnipos-order-service/internal/entity/handler"
	entRepoPkg "github.com/fekuna/omnipos-order-service/internal/entity/repository"
	entUCPkg "github.com/fekuna/omnipos-order-service/internal/entity/usecase"

	metaH "github.com/fekuna/omnipos-order-service/internal/metadata/handler"
	metaRepoPkg "github.com/fekuna/omnipos-order-service/internal/metadata/repository"
	metaUCPkg "github.com/fekuna/omnipos-order-service/internal/metadata/usecase"

	txH "github.com/fekuna/omnipos-order-service/internal/transaction/handler"
	txRepoPkg "github.com/fekuna/omnipos-order-service/internal/transaction/repository"
	txUCPkg "github.com/fekuna/omnipos-order-service/internal/transaction/usecase"

	orderH "github.com/fekuna/omnipos-order-service/internal/order/handler"
	"github.com/fekuna/omnipos-order-service/internal/order/recommendation"
	orderUCPkg "github.com/fekuna/omnipos-order-service/internal/order/usecase"

	payH "github.com/fekuna/omnipos-order-service/internal/payment/handler"
	payUCPkg "github.com/fekuna/omnipos-order-service/internal/payment/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "omnipos.order.v1.OrderService"

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			appLogger.Fatal("Could not apply schema", zap.Error(err))
		}
		appLogger.Info("Schema is up to date")
	}

	// 4. Initialize Redis (optional)
	var (
		orderLocker  order.Locker
		paymentCache payment.Cache
		paymentLock  payment.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, running without locks and cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			orderLocker = redisClient
			paymentCache = redisClient
			paymentLock = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5. Initialize realtime fan-out
	hub := realtime.NewHub(0, appLogger)
	defer hub.Close()

	var publisher realtime.Publisher = hub
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer producer.Close()
		publisher = realtime.NewKafkaPublisher(producer)

		// Every instance needs every event for its own subscribers, so each one reads
		// under its own consumer group.
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: instanceGroupID(cfg.Kafka.GroupID),
		})
		defer consumer.Close()

		listener := realtime.NewListener(consumer, hub, appLogger)
		go listener.Start(ctx)
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 6. Initialize Repositories
	entRepo := entRepoPkg.NewPGRepository(db)
	metaRepo := metaRepoPkg.NewPGRepository(db)
	txRepo := txRepoPkg.NewPGRepository(db)
	txManager := postgres.NewTxManager(db)

	// 7. Initialize UseCases
	entUC := entUCPkg.NewEntityUseCase(entRepo, appLogger)
	metaUC := metaUCPkg.NewMetadataUseCase(metaRepo, appLogger)
	txUC := txUCPkg.NewTransactionUseCase(txRepo, txManager, publisher, appLogger)

	orderUC := orderUCPkg.NewOrderUseCase(
		entUC, metaUC, txUC, txManager,
		recommendation.NewHeuristic(entUC),
		orderLocker, cfg.Order.LockTTL, appLogger,
	)

	payUC := payUCPkg.NewPaymentUseCase(
		txUC, metaUC, txManager,
		payment.NewFraudEngine(),
		gateway.NewSimulated(cfg.Payment.GatewaySeed),
		aggregator(cfg.Analytics.Mode),
		payUCPkg.Options{
			Cache:    paymentCache,
			CacheTTL: cfg.Analytics.CacheTTL,
			Locker:   paymentLock,
		},
		appLogger,
	)

	// 8. Initialize Handlers
	v := validation.New()
	router := httpapi.NewRouter(appLogger,
		entH.NewEntityHandler(entUC, v, appLogger),
		metaH.NewMetadataHandler(metaUC, v, appLogger),
		txH.NewTransactionHandler(txUC, hub, v, appLogger),
		orderH.NewOrderHandler(orderUC, v, appLogger),
		payH.NewPaymentHandler(payUC, v, appLogger),
	)

	// 9. Start HTTP Server
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 10. Start gRPC Server (health + reflection)
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	// Closing the hub ends open SSE streams so the HTTP server can drain.
	hub.Close()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func aggregator(mode string) payment.AnalyticsAggregator {
	if mode == "proportional" {
		return analytics.Proportional{}
	}
	return analytics.GroupBy{}
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func instanceGroupID(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return base
	}
	return base + "-" + host
}
