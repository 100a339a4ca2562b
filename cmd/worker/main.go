package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"catalog-ingest/internal/config"
	"catalog-ingest/internal/domain/repositories"
	"catalog-ingest/internal/infrastructure/db"
	"catalog-ingest/internal/infrastructure/queue"
	infrarepo "catalog-ingest/internal/infrastructure/repositories"
	"catalog-ingest/internal/infrastructure/storage"
	"catalog-ingest/internal/usecases"
	coreerrors "catalog-ingest/pkg/errors"
)

const workerCount = 4

func main() {
	cfg := config.Load()

	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
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

	uploadEngine := usecases.NewUploadEngine(uploadRepo, imageRepo, blobStore, enqueuer)
	imageResolver := usecases.NewImageResolver(imageRepo, uploadRepo, uploadEngine, enqueuer)
	cleanupService := usecases.NewCleanupService(uploadRepo, blobStore, cfg.Upload.StaleAfterSecs)

	handler := func(ctx context.Context, job queue.Job) error {
		switch job.Type {
		case queue.JobGenerateVariants:
			uploadID, err := uuid.Parse(job.UploadID)
			if err != nil {
				return coreerrors.Validation("job carries an invalid upload_id", "upload_id")
			}
			_, err = uploadEngine.GenerateVariantsNow(ctx, uploadID)
			return err
		case queue.JobURLFetch:
			imageID, err := imageResolver.FetchRemote(ctx, job.SourceURL)
			if err != nil {
				return err
			}
			if job.ProductSKU == "" {
				return nil
			}
			product, err := productRepo.FindBySKU(ctx, job.ProductSKU)
			if err != nil {
				return fmt.Errorf("looking up product %s for async image attach: %w", job.ProductSKU, err)
			}
			if product == nil {
				log.Printf("worker: product %s no longer exists, dropping fetched image %s", job.ProductSKU, imageID)
				return nil
			}
			return productRepo.AttachPrimaryImage(ctx, product.ID, imageID)
		case queue.JobCleanup:
			cleanupService.Run(ctx)
			return nil
		default:
			return fmt.Errorf("unrecognized job type %q", job.Type)
		}
	}

	pool := queue.NewWorkerPool(workerCount, rdb, handler)
	log.Printf("worker pool started with %d workers", workerCount)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Print("shutdown signal received, draining workers")

	pool.Shutdown()
	log.Print("worker pool shut down cleanly")
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
