package repositories

import (
	"context"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
)

// UploadRepository persists Upload rows and provides the row-level
// exclusive lock the Upload Engine requires around receive_chunk,
// complete, and cancel.
type UploadRepository interface {
	Create(ctx context.Context, u *entities.Upload) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Upload, error)
	// FindByIDForUpdate loads the Upload row under a SELECT ... FOR UPDATE
	// lock, held for the duration of the caller's transaction fn.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID, fn func(u *entities.Upload) error) error
	FindCompletedByChecksum(ctx context.Context, checksum string) (*entities.Upload, error)
	FindCompletedByOriginalFilename(ctx context.Context, filename string) (*entities.Upload, error)
	FindCompletedByStoredFilenameContains(ctx context.Context, substr string) (*entities.Upload, error)
	Update(ctx context.Context, u *entities.Upload) error
	// ListStale returns pending/uploading Uploads older than cutoff, for the
	// cleanup sweep.
	ListStale(ctx context.Context, cutoffSeconds int64) ([]entities.Upload, error)
}
