package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-service/config"
	"bakery-service/controllers"
	"bakery-service/database"
	"bakery-service/logger"
	"bakery-service/middleware"
	aws_pkg "bakery-service/pkg/aws"
	"bakery-service/repository"
	"bakery-service/routes"
	"bakery-service/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer zl.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Storage ---
	db, err := database.ConnectPostgres(cfg.DSN(), zl)
	if err != nil {
		zl.Fatal("DB connection failed", zap.Error(err))
	}
	redisClient, err := database.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		zl.Fatal("Redis connection failed", zap.Error(err))
	}

	// --- AWS (only needed for SNS and CloudWatch) ---
	var awsCfg sdkaws.Config
	if cfg.EventsSink == config.EventsSinkSNS || cfg.CloudWatchEnabled {
		awsCfg, err = aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			zl.Fatal("Failed to load AWS config", zap.Error(err))
		}
	}
	metricsClient := aws_pkg.NewMetricsClient(awsCfg, "", cfg.CloudWatchEnabled)

	publisher, closer := newEventPublisher(cfg, awsCfg, zl)

	// --- Dependency injection ---
	productRepo := repository.NewGormProductRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	webhookRepo := repository.NewGormWebhookEventRepository(db)
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL)

	cache := services.NewCacheManager(redisClient, cfg.CacheTTL, zl)
	gateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	productService := services.NewProductService(productRepo, categoryRepo, cache, metricsClient, zl)
	categoryService := services.NewCategoryService(categoryRepo, zl)
	cartService := services.NewCartService(cartRepo, productRepo, zl)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, publisher, cache, metricsClient, zl)
	paymentService := services.NewPaymentService(
		gateway,
		services.PaymentSecrets{KeySecret: cfg.RazorpayKeySecret, WebhookSecret: cfg.RazorpayWebhookSecret},
		orderRepo, productRepo, cartRepo, webhookRepo,
		publisher, metricsClient, zl,
	)

	validator := controllers.NewRequestValidator()

	// --- HTTP router ---
	limiter := middleware.NewRateLimiter(rate.Limit(20), 40, 10*time.Minute)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepLimiter(sweepCtx, limiter)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(zl),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		limiter.Middleware(),
		middleware.Metrics(metricsClient),
		middleware.Timeout(30*time.Second),
	)

	routes.RegisterRoutes(r, middleware.NewAuthenticator(cfg.JWTSecret, zl), routes.Controllers{
		Products:   controllers.NewProductController(productService, validator),
		Categories: controllers.NewCategoryController(categoryService, validator),
		Cart:       controllers.NewCartController(cartService),
		Orders:     controllers.NewOrderController(orderService),
		Payments:   controllers.NewPaymentController(paymentService, zl),
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zl.Info("Bakery Service started", zap.String("port", cfg.Port), zap.String("events_sink", cfg.EventsSink))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
	}
	stopSweep()

	if closer != nil {
		if err := closer.Close(); err != nil {
			zl.Error("Event publisher close error", zap.Error(err))
		}
	}
	if err := redisClient.Close(); err != nil {
		zl.Error("Redis close error", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		zl.Error("Database close error", zap.Error(err))
	}

	zl.Info("Bakery Service stopped gracefully")
}

// newEventPublisher picks the sink named by EVENTS_SINK. The returned closer
// is nil when the sink holds no connections.
func newEventPublisher(cfg *config.Config, awsCfg sdkaws.Config, zl *zap.Logger) (services.EventPublisher, io.Closer) {
	switch cfg.EventsSink {
	case config.EventsSinkSNS:
		zl.Info("Publishing order events to SNS", zap.String("topic", cfg.OrderEventsTopicARN))
		return services.NewSNSEventPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN), nil
	case config.EventsSinkKafka:
		zl.Info("Publishing order events to Kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
		pub := services.NewKafkaEventPublisher(services.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		return pub, pub
	default:
		return services.NoopPublisher{}, nil
	}
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			limiter.Sweep(now)
		}
	}
}
