package repositories

import (
	"context"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
)

type ImageRepository interface {
	Create(ctx context.Context, img *entities.Image) error
	FindByUploadAndVariant(ctx context.Context, uploadID uuid.UUID, variant string) (*entities.Image, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Image, error)

	// FindOriginalByExactPath implements resolver step 1a: an Image whose
	// variant=original and whose path equals source.
	FindOriginalByExactPath(ctx context.Context, path string) (*entities.Image, error)
	// FindOriginalByPathContains implements resolver step 1b, most-recent first.
	FindOriginalByPathContains(ctx context.Context, basename string) (*entities.Image, error)
	// FindOriginalByUploadFilename implements resolver step 1c/1d: the
	// Image's Upload.original_filename equals basename, or
	// Upload.stored_filename contains basename, most-recent first.
	FindOriginalByUploadFilename(ctx context.Context, basename string) (*entities.Image, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
