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

type GormImageRepository struct {
	db *gorm.DB
}

func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

func (r *GormImageRepository) Create(ctx context.Context, img *entities.Image) error {
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		return fmt.Errorf("creating image: %w", err)
	}
	return nil
}

func (r *GormImageRepository) FindByUploadAndVariant(ctx context.Context, uploadID uuid.UUID, variant string) (*entities.Image, error) {
	var img entities.Image
	err := r.db.WithContext(ctx).
		Where("upload_id = ? AND variant = ?", uploadID, variant).
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding image by upload and variant: %w", err)
	}
	return &img, nil
}

func (r *GormImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Image, error) {
	var img entities.Image
	err := r.db.WithContext(ctx).First(&img, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding image: %w", err)
	}
	return &img, nil
}

func (r *GormImageRepository) FindOriginalByExactPath(ctx context.Context, path string) (*entities.Image, error) {
	var img entities.Image
	err := r.db.WithContext(ctx).
		Where("variant = ? AND path = ?", "original", path).
		Order("created_at DESC").
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding original by exact path: %w", err)
	}
	return &img, nil
}

func (r *GormImageRepository) FindOriginalByPathContains(ctx context.Context, basename string) (*entities.Image, error) {
	var img entities.Image
	err := r.db.WithContext(ctx).
		Where("variant = ? AND path LIKE ?", "original", "%"+basename+"%").
		Order("created_at DESC").
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding original by path substring: %w", err)
	}
	return &img, nil
}

// FindOriginalByUploadFilename joins Image to its owning Upload to match
// either the upload's declared original_filename exactly or its generated
// stored_filename by substring, most recently created first.
func (r *GormImageRepository) FindOriginalByUploadFilename(ctx context.Context, basename string) (*entities.Image, error) {
	var img entities.Image
	err := r.db.WithContext(ctx).
		Joins("JOIN uploads ON uploads.id = images.upload_id").
		Where("images.variant = ? AND (uploads.original_filename = ? OR uploads.stored_filename LIKE ?)",
			"original", basename, "%"+basename+"%").
		Order("images.created_at DESC").
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding original by upload filename: %w", err)
	}
	return &img, nil
}

func (r *GormImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Image{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

var _ repositories.ImageRepository = (*GormImageRepository)(nil)
