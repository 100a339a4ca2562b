package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"

	"catalog-ingest/internal/config"
	"catalog-ingest/internal/delivery/http/handlers"
	"catalog-ingest/internal/delivery/http/routers"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/db"
	"catalog-ingest/internal/infrastructure/queue"
	infrarepo "catalog-ingest/internal/infrastructure/repositories"
	"catalog-ingest/internal/infrastructure/storage"
	"catalog-ingest/internal/usecases"

	_ "catalog-ingest/migrations"
)

func main() {
	cfg := config.Load()

	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		log.Fatalf("could not get *sql.DB from gorm: %v", err)
	}

	if os.Getenv("RUN_AUTO_MIGRATION") == "true" {
		if err := goose.Up(sqlDB, "."); err != nil {
			log.Fatalf("applying migrations failed: %v", err)
		}
	}

	blobStore, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("configuring blob store failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	enqueuer := &queue.Client{Redis: rdb}

	uploadRepo := infrarepo.NewGormUploadRepository(database)
	imageRepo := infrarepo.NewGormImageRepository(database)
	productRepo := infrarepo.NewGormProductRepository(database)
	importLogRepo := infrarepo.NewGormImportLogRepository(database)

	uploadEngine := usecases.NewUploadEngine(uploadRepo, imageRepo, blobStore, enqueuer)
	imageResolver := usecases.NewImageResolver(imageRepo, uploadRepo, uploadEngine, enqueuer)
	importEngine := usecases.NewImportEngine(productRepo, importLogRepo, imageResolver)

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Cleanup.CronSchedule, func() {
		job := queue.Job{Type: queue.JobCleanup, MaxAttempts: 3}
		if err := enqueuer.Enqueue(context.Background(), job); err != nil {
			log.Printf("scheduling cleanup sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("scheduling cleanup sweep failed: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	uploadHandler := handlers.NewUploadHandler(uploadEngine)
	importHandler := handlers.NewImportHandler(importEngine, importLogRepo)

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Upload.MaxFileSize),
	})
	app.Use(logger.New())
	app.Use(cors.New())

	routers.SetupRoutes(app, uploadHandler, importHandler)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Printf("server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Print("shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctxShutdown); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Print("server shut down cleanly")
}

func newBlobStore(cfg *config.Config) (repositories.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3BlobStore(context.Background(), storage.S3Config{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretKey,
			KeyPrefix:       cfg.Storage.S3KeyPrefix,
			UsePathStyle:    cfg.Storage.S3UsePathStyle,
		})
	default:
		return storage.NewLocalBlobStore(cfg.Upload.UploadsDir), nil
	}
}
