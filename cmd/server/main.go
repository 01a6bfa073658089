package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casework-service/internal/api/routes"
	"casework-service/internal/config"
	"casework-service/internal/database"
	"casework-service/internal/kafka"
	"casework-service/internal/repositories/postgres"
	"casework-service/internal/services"
	"casework-service/internal/storage"
	"casework-service/internal/websocket"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.Info("Starting casework server", "version", version)

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	documentStore, err := storage.NewDocumentStore(&cfg.Minio)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
	if err != nil {
		slog.Error("Failed to connect to Kafka", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	queueRepo := postgres.NewQueueRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)

	// Connection manager
	manager := websocket.NewManager(websocket.Config{
		SendQueueCapacity: cfg.WebSocket.SendQueueCapacity,
		HeartbeatInterval: cfg.WebSocket.HeartbeatInterval,
		MissedThreshold:   cfg.WebSocket.MissedThreshold,
	}, version)
	go manager.Run()

	// Services
	redisService := services.NewRedisService(redisClient)
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	notificationService := services.NewNotificationService(notificationRepo, manager, producer)
	queueService := services.NewQueueService(redisClient, queueRepo, manager)
	documentService := services.NewDocumentService(documentStore, documentRepo, manager)

	// Kiosk check-in events arrive over Kafka.
	consumer := kafka.NewQueueConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.QueueEventsTopic,
		cfg.Kafka.ConsumerGroup,
		queueService,
		slog.Default(),
	)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go consumer.Run(consumerCtx)

	router := routes.NewRouter(manager, routes.Services{
		User:         userService,
		Redis:        redisService,
		Notification: notificationService,
		Queue:        queueService,
		Document:     documentService,
	}, cfg.JWT.Secret)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopConsumer()
	if err := consumer.Close(); err != nil {
		slog.Error("Failed to close Kafka consumer", "error", err)
	}

	manager.Stop()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
