package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/internal/domain/repositories"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *entities.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, p *entities.Product) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*entities.Product, error) {
	var p entities.Product
	err := r.db.WithContext(ctx).First(&p, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding product by sku: %w", err)
	}
	return &p, nil
}

func (r *GormProductRepository) AttachPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Product{}).
		Where("id = ?", productID).
		Update("primary_image_id", imageID).Error
	if err != nil {
		return fmt.Errorf("attaching primary image: %w", err)
	}
	return nil
}

func (r *GormProductRepository) ClearPrimaryImageRef(ctx context.Context, imageID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Product{}).
		Where("primary_image_id = ?", imageID).
		Update("primary_image_id", nil).Error
	if err != nil {
		return fmt.Errorf("clearing primary image reference: %w", err)
	}
	return nil
}

var _ repositories.ProductRepository = (*GormProductRepository)(nil)
