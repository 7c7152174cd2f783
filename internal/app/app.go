package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"careshift_backend/internal/config"
	"careshift_backend/internal/handlers"
	"careshift_backend/internal/logger"
	"careshift_backend/internal/middleware"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/routes"
	"careshift_backend/internal/scheduling"
	"careshift_backend/internal/services"
	"careshift_backend/internal/validator"
	"careshift_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(
		&models.Shift{},
		&models.Application{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := repositories.NewGormStore(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	auditRepo := repositories.NewAuditRepository(gormDB)

	dispatcher := workers.NewDispatcher(
		cfg.Dispatcher.QueueSize,
		workers.NewNotificationStoreSink(notificationRepo),
		workers.NewAuditStoreLogger(auditRepo),
	)
	dispatcher.Start(ctx)

	sweeper := workers.NewShiftSweeper(store, time.Duration(cfg.Sweeper.IntervalMinutes)*time.Minute)
	sweeper.Start(ctx)

	ginRouter := SetupRouter(cfg, store, notificationRepo, auditRepo, dispatcher)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter assembles services, handlers and routes over the given store.
// Split out so tests can mount the full router on their own store instance.
func SetupRouter(
	cfg *config.Config,
	store repositories.Store,
	notificationRepo repositories.NotificationRepository,
	auditRepo repositories.AuditRepository,
	events services.EventSink,
) *gin.Engine {
	schedulingValidator := scheduling.NewValidator(store)
	coordinator := services.NewAssignmentCoordinator(store, events)
	shiftService := services.NewShiftService(store, coordinator, events)
	applicationService := services.NewApplicationService(store, schedulingValidator, events)

	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	appHandlers := &handlers.AppHandlers{
		ShiftHandler:        handlers.NewShiftHandler(baseHandler, shiftService),
		ApplicationHandler:  handlers.NewApplicationHandler(baseHandler, applicationService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, notificationRepo),
		AuditHandler:        handlers.NewAuditHandler(baseHandler, auditRepo),
	}

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, cfg.JWT.Secret)
	return ginRouter
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
