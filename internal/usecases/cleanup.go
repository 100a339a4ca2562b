package usecases

import (
	"context"
	"log"

	"catalog-ingest/internal/domain/repositories"
)

// CleanupService sweeps Uploads that have sat in pending/uploading past
// the configured staleness window, deleting their chunk prefixes and
// marking them failed so they stop counting against resume/status calls.
type CleanupService struct {
	uploads        repositories.UploadRepository
	blobs          repositories.BlobStore
	staleAfterSecs int64
}

func NewCleanupService(uploads repositories.UploadRepository, blobs repositories.BlobStore, staleAfterSecs int64) *CleanupService {
	return &CleanupService{uploads: uploads, blobs: blobs, staleAfterSecs: staleAfterSecs}
}

// Run performs one sweep. It is safe to call repeatedly; the worker runs
// it for each queue.JobCleanup that the server's cron schedule enqueues.
func (s *CleanupService) Run(ctx context.Context) {
	stale, err := s.uploads.ListStale(ctx, s.staleAfterSecs)
	if err != nil {
		log.Printf("cleanup: listing stale uploads failed: %v", err)
		return
	}

	for _, u := range stale {
		if err := s.blobs.DeletePrefix(chunkPrefix(u.ID)); err != nil {
			log.Printf("cleanup: deleting chunk prefix for %s failed: %v", u.ID, err)
		}

		u.Status = "failed"
		u.FailureReason = "Stale upload reaped by cleanup sweep"
		if err := s.uploads.Update(ctx, &u); err != nil {
			log.Printf("cleanup: marking upload %s failed: %v", u.ID, err)
		} else {
			log.Printf("cleanup: reaped stale upload %s", u.ID)
		}
	}
}
