package main

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ridecrew/ridecrew/internal/pkg/config"
	"github.com/ridecrew/ridecrew/internal/pkg/database"
	"github.com/ridecrew/ridecrew/internal/pkg/logger"
	"github.com/ridecrew/ridecrew/internal/pkg/middleware"
	nsqpkg "github.com/ridecrew/ridecrew/internal/pkg/nsq"
	"github.com/ridecrew/ridecrew/internal/pkg/server"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
	realtimeHandler "github.com/ridecrew/ridecrew/services/realtime/handler"
	socialRepo "github.com/ridecrew/ridecrew/services/social/repository"
	trackingGateway "github.com/ridecrew/ridecrew/services/tracking/gateway"
	trackingHandler "github.com/ridecrew/ridecrew/services/tracking/handler"
	trackingRepo "github.com/ridecrew/ridecrew/services/tracking/repository"
	trackingUsecase "github.com/ridecrew/ridecrew/services/tracking/usecase"
	tripRepo "github.com/ridecrew/ridecrew/services/trip/repository"
)

func main() {
	configs := config.InitConfig("config/api.env")

	zapLogger, err := logger.NewZapLogger(configs.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", configs.App.Name),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment))

	shutdownManager := server.NewShutdownManager(zapLogger)

	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	shutdownManager.Register(func(context.Context) error {
		return postgresClient.Close()
	})

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	shutdownManager.Register(func(context.Context) error {
		return redisClient.Close()
	})

	// Eventing is optional; without a broker the gateway drops events
	trackingGW := trackingGateway.NewNoopTrackingGW()
	if configs.NSQ.Enabled {
		nsqProducer, err := nsqpkg.NewProducer(configs.NSQ.Address)
		if err != nil {
			logger.Fatal("Failed to connect to NSQ", logger.Err(err))
		}
		shutdownManager.Register(func(context.Context) error {
			nsqProducer.Stop()
			return nil
		})
		trackingGW = trackingGateway.NewTrackingGW(nsqProducer)
	}

	// Repositories
	db := postgresClient.GetDB()
	sessions := trackingRepo.NewTrackingRepository(db)
	locations := trackingRepo.NewLocationCache(redisClient)
	trips := tripRepo.NewTripRepository(db)
	messages := socialRepo.NewMessageRepository(db)
	notifications := socialRepo.NewNotificationRepository(db)
	users := socialRepo.NewUserRepository(db)

	// Tracking core
	trackingUC := trackingUsecase.NewTrackingUC(configs.Tracking, sessions, trips, locations, trackingGW)

	// Realtime core: one registry and broadcaster per process
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)
	wsManager := ws.NewManager(configs.JWT)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.PanicRecoveryMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "app": configs.App.Name})
	})

	authMiddleware := middleware.JWTAuthMiddleware(configs.JWT)
	trackingHandler.NewHandler(trackingUC).RegisterRoutes(e, authMiddleware)
	realtimeHandler.NewHandler(wsManager, registry, broadcaster, trips, messages, notifications, users).RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port, shutdownManager)
	if err := srv.Start(); err != nil {
		logger.Fatal("Server stopped", logger.Err(err))
	}
}
