package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym-pos-service/config"
	"gym-pos-service/internal/api"
	"gym-pos-service/internal/broker"
	"gym-pos-service/internal/catalog"
	"gym-pos-service/internal/redisclient"
	"gym-pos-service/internal/service"
	"gym-pos-service/internal/store"
	"gym-pos-service/internal/util"
	"gym-pos-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting gym POS service")

	tp, err := util.InitTracer("gym-pos-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	serviceCatalog := catalog.Default()
	if cfg.Business.CatalogPath != "" {
		serviceCatalog, err = catalog.LoadFile(cfg.Business.CatalogPath)
		if err != nil {
			log.Fatalf("Failed to load service catalog: %v", err)
		}
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	inventoryService := service.NewInventoryService(db, redisClient)
	authService := service.NewAuthService(db, redisClient,
		time.Duration(cfg.Business.TokenTTLSeconds)*time.Second)
	checkoutService := service.NewCheckoutService(db, redisClient, inventoryService,
		eventPublisher, serviceCatalog,
		time.Duration(cfg.Business.SessionTTLSeconds)*time.Second,
		cfg.Business.LowStockThreshold)
	subscriptionService := service.NewSubscriptionService(db, eventPublisher)
	attendanceService := service.NewAttendanceService(db)
	reportService := service.NewReportService(db, redisClient)

	ctx := context.Background()
	if err := inventoryService.SyncToRedis(ctx); err != nil {
		log.Printf("Failed to sync inventory to Redis: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(consumer, db, subscriptionService, reportService)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	go func() {
		interval := time.Duration(cfg.Business.ExpiryScanIntervalMin) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if _, err := subscriptionService.ScanExpiring(workerCtx, time.Now()); err != nil {
			log.Printf("Subscription expiry scan error: %v", err)
		}
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if _, err := subscriptionService.ScanExpiring(workerCtx, time.Now()); err != nil {
					log.Printf("Subscription expiry scan error: %v", err)
				}
			}
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(authService, checkoutService, subscriptionService,
		attendanceService, reportService, db)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notificationWorker.Stop()

	log.Println("Server exited")
}
