package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"triage-waitlist/config"
	deliveryHttp "triage-waitlist/internal/delivery/http"
	"triage-waitlist/internal/delivery/http/handler"
	"triage-waitlist/internal/delivery/http/middleware"
	"triage-waitlist/internal/infrastructure/cache"
	"triage-waitlist/internal/infrastructure/database"
	"triage-waitlist/internal/infrastructure/messaging"
	"triage-waitlist/internal/repository"
	"triage-waitlist/internal/service"
	"triage-waitlist/internal/usecase"
	"triage-waitlist/pkg/jwt"
	"triage-waitlist/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	KafkaWriter *kafka.Writer
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		if err := database.RunMigrations(context.Background(), sqlDB, cfg.DB.MigrationsPath, logrus.StandardLogger()); err != nil {
			app.Close()
			return nil, err
		}
	}

	// Redis and Kafka are optional, the waitlist works without either
	var waitlistCache service.WaitlistCache = service.NoopWaitlistCache{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		waitlistCache = service.NewRedisWaitlistCache(redisClient, logrus.StandardLogger(), cfg.Redis.CacheTTL)
	}

	var publisher service.ActionLogPublisher = service.NoopActionLogPublisher{}
	if cfg.Kafka.Enabled {
		app.KafkaWriter = messaging.NewKafkaWriter(cfg.Kafka, logrus.StandardLogger())
		publisher = service.NewKafkaActionLogPublisher(app.KafkaWriter, logrus.StandardLogger())
	}

	// Initialize all layers
	app.Server = initializeServer(cfg, db, waitlistCache, publisher)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func initializeServer(
	cfg *config.Config,
	db *gorm.DB,
	waitlistCache service.WaitlistCache,
	publisher service.ActionLogPublisher,
) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.Auth)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize store
	store := repository.NewStore(db)

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize services
	auditService := service.NewAuditService(log, service.SystemClock)

	// Initialize usecases
	triageUsecase := usecase.NewTriageUsecase(store, log, customValidator, auditService, waitlistCache, publisher, service.SystemClock)
	actionLogUsecase := usecase.NewActionLogUsecase(store, log)
	priorityUsecase := usecase.NewPriorityUsecase(store, log, waitlistCache)

	// Initialize handlers
	patientHandler := handler.NewPatientHandler(triageUsecase)
	actionLogHandler := handler.NewActionLogHandler(actionLogUsecase)
	priorityHandler := handler.NewPriorityHandler(priorityUsecase)

	// Initialize middleware
	staffAuthMiddleware := middleware.NewStaffAuthMiddleware(jwtService, cfg.Auth.Enabled)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSAllowedOrigin)
	requestLoggerMiddleware := middleware.NewRequestLoggerMiddleware(log)

	if !cfg.Auth.Enabled {
		log.Warn("Staff authentication is disabled, staff routes are open")
	}

	// Initialize router
	router := deliveryHttp.NewRouter(patientHandler, actionLogHandler, priorityHandler,
		staffAuthMiddleware, corsMiddleware, requestLoggerMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.App.ShutdownTimeout)
	defer cancel()

	// In-flight mutations commit or roll back before connections close
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, kafka)
func (app *App) Close() {
	// Flush pending action log events first
	if app.KafkaWriter != nil {
		if err := app.KafkaWriter.Close(); err != nil {
			logrus.Warnf("Failed to close Kafka writer: %+v", err)
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
