package repositories

import (
	"context"

	"github.com/google/uuid"

	"catalog-ingest/internal/domain/entities"
)

type ProductRepository interface {
	Create(ctx context.Context, p *entities.Product) error
	Update(ctx context.Context, p *entities.Product) error
	FindBySKU(ctx context.Context, sku string) (*entities.Product, error)
	// AttachPrimaryImage is idempotent: setting the same image id twice is
	// a no-op write.
	AttachPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) error
	// ClearPrimaryImageRef nulls primary_image_id for every product
	// referencing imageID, used when an Image is deleted.
	ClearPrimaryImageRef(ctx context.Context, imageID uuid.UUID) error
}
